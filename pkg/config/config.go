package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// RGB is a linear colour written as [r, g, b]
type RGB [3]float64

// Color converts to a core colour
func (c RGB) Color() core.Color {
	return core.NewColor(c[0], c[1], c[2])
}

// Background overrides the scene's miss colour
type Background struct {
	Kind   string `yaml:"kind"`             // "" keeps the scene's | "solid" | "gradient"
	Color  RGB    `yaml:"color,omitempty"`  // solid
	Top    RGB    `yaml:"top,omitempty"`    // gradient
	Bottom RGB    `yaml:"bottom,omitempty"` // gradient
}

// Preview configures the interactive preview server
type Preview struct {
	Addr           string  `yaml:"addr"`             // e.g. :8080
	SamplesPerPass int     `yaml:"samples_per_pass"` // samples added per frame
	MaxBounces     int     `yaml:"max_bounces"`
	Scale          float64 `yaml:"scale"`      // resolution multiplier
	Accumulate     bool    `yaml:"accumulate"` // refine instead of redraw
	MaxFrames      int     `yaml:"max_frames"` // 0 = until the scene changes
}

// Config is a render configuration. Zero sizes and sample counts defer to the scene.
type Config struct {
	Scene           string  `yaml:"scene"`             // built-in name or .scene path
	Width           int     `yaml:"width"`             // 0 = scene's
	AspectRatio     float64 `yaml:"aspect_ratio"`      // 0 = scene's
	SamplesPerPixel int     `yaml:"samples_per_pixel"` // 0 = scene's
	MaxBounces      int     `yaml:"max_bounces"`       // 0 = scene's
	Workers         int     `yaml:"workers"`
	TileSize        int     `yaml:"tile_size"`
	Seed            int64   `yaml:"seed"`

	Background Background `yaml:"background,omitempty"`
	Preview    Preview    `yaml:"preview"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Scene:    "default",
		Workers:  1,
		TileSize: renderer.DefaultTileSize,
		Preview: Preview{
			Addr:           ":8080",
			SamplesPerPass: 1,
			MaxBounces:     10,
			Scale:          0.5,
			Accumulate:     true,
			MaxFrames:      256,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// Save writes the configuration as YAML
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every out-of-range setting
func (c *Config) Validate() error {
	var errs []error
	if c.Width < 0 {
		errs = append(errs, fmt.Errorf("width %d is negative", c.Width))
	}
	if c.AspectRatio < 0 {
		errs = append(errs, fmt.Errorf("aspect_ratio %g is negative", c.AspectRatio))
	}
	if c.SamplesPerPixel < 0 {
		errs = append(errs, fmt.Errorf("samples_per_pixel %d is negative", c.SamplesPerPixel))
	}
	if c.MaxBounces < 0 {
		errs = append(errs, fmt.Errorf("max_bounces %d is negative", c.MaxBounces))
	}
	if c.TileSize < 0 {
		errs = append(errs, fmt.Errorf("tile_size %d is negative", c.TileSize))
	}
	if c.Preview.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("preview.max_frames %d is negative", c.Preview.MaxFrames))
	}
	if c.Preview.Scale < 0 || c.Preview.Scale > 1 {
		errs = append(errs, fmt.Errorf("preview.scale %g must be in [0, 1]", c.Preview.Scale))
	}
	if _, err := c.Background.Policy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Policy returns the configured background, or nil to keep the scene's own
func (b Background) Policy() (scene.Background, error) {
	switch b.Kind {
	case "":
		return nil, nil
	case "solid":
		return scene.NewSolidBackground(b.Color.Color()), nil
	case "gradient":
		return scene.NewGradientBackground(b.Top.Color(), b.Bottom.Color()), nil
	}
	return nil, fmt.Errorf("background kind %q must be solid or gradient", b.Kind)
}

// SceneOptions returns the scene build options implied by the configuration
func (c *Config) SceneOptions() scene.Options {
	return scene.Options{
		Camera: geometry.CameraConfig{Width: c.Width, AspectRatio: c.AspectRatio},
		Seed:   c.Seed,
	}
}

// LoadScene builds the configured scene and applies the background override
func (c *Config) LoadScene() (*scene.Scene, error) {
	sc, err := scene.NewScene(c.Scene, c.SceneOptions())
	if err != nil {
		return nil, err
	}
	background, err := c.Background.Policy()
	if err != nil {
		return nil, err
	}
	if background != nil {
		sc.World.Background = background
	}
	return sc, nil
}

// RenderOptions returns the execution options for a render
func (c *Config) RenderOptions() renderer.Options {
	return renderer.Options{
		Workers:  c.Workers,
		TileSize: c.TileSize,
		Seed:     c.Seed,
	}
}

// PreviewConfig returns the preview loop settings
func (c *Config) PreviewConfig() renderer.PreviewConfig {
	return renderer.PreviewConfig{
		SamplesPerPass: c.Preview.SamplesPerPass,
		MaxDepth:       c.Preview.MaxBounces,
		Accumulate:     c.Preview.Accumulate,
		MaxFrames:      c.Preview.MaxFrames,
	}
}

// PreviewOptions returns the execution options for the preview loop
func (c *Config) PreviewOptions() renderer.Options {
	opts := c.RenderOptions()
	opts.Scale = c.Preview.Scale
	return opts
}
