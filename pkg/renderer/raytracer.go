package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// DefaultTileSize is the tile edge length in pixels
const DefaultTileSize = 32

// Options controls how a render is executed. The zero value renders on the
// calling goroutine at the scene's own resolution without logging.
type Options struct {
	Width    int             // Overrides the scene camera width when > 0
	Scale    float64         // Resolution multiplier applied after Width; 0 means 1
	Workers  int             // Tile workers; <= 1 renders on the calling goroutine
	TileSize int             // Tile edge in pixels; 0 means DefaultTileSize
	Seed     int64           // Base seed for every tile's random stream
	Logger   *zerolog.Logger // nil disables logging
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

// Raytracer renders a scene into a framebuffer, tile by tile
type Raytracer struct {
	scene    *scene.Scene
	width    int
	height   int
	config   scene.SamplingConfig
	options  Options
	tiles    []*Tile
	renderer *TileRenderer
	logger   *zerolog.Logger
}

// NewRaytracer creates a raytracer. Zero fields of config fall back to the scene's sampling settings.
func NewRaytracer(sc *scene.Scene, config scene.SamplingConfig, options Options) (*Raytracer, error) {
	if sc == nil || sc.World == nil || sc.Camera == nil {
		return nil, fmt.Errorf("scene is missing its world or camera")
	}

	config = mergeSamplingConfig(sc.SamplingConfig, config)
	if config.SamplesPerPixel <= 0 || config.MaxDepth <= 0 {
		return nil, fmt.Errorf("samples (%d) and bounces (%d) must be positive", config.SamplesPerPixel, config.MaxDepth)
	}

	width, height := imageSize(sc, options)
	if options.TileSize <= 0 {
		options.TileSize = DefaultTileSize
	}

	pathTracer := integrator.NewPathTracingIntegrator(config.MaxDepth)

	return &Raytracer{
		scene:    sc,
		width:    width,
		height:   height,
		config:   config,
		options:  options,
		tiles:    NewTileGrid(width, height, options.TileSize),
		renderer: NewTileRenderer(sc.Camera, sc.World, pathTracer, width, height),
		logger:   options.logger(),
	}, nil
}

// imageSize applies the width override and scale to the scene camera's resolution
func imageSize(sc *scene.Scene, options Options) (int, int) {
	width := sc.CameraConfig.Width
	if options.Width > 0 {
		width = options.Width
	}
	if options.Scale > 0 {
		width = int(float64(width) * options.Scale)
	}
	width = max(1, width)

	cfg := sc.CameraConfig
	cfg.Width = width
	return width, cfg.Height()
}

func mergeSamplingConfig(base, override scene.SamplingConfig) scene.SamplingConfig {
	if override.SamplesPerPixel > 0 {
		base.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		base.MaxDepth = override.MaxDepth
	}
	return base
}

// Width returns the output width in pixels
func (rt *Raytracer) Width() int { return rt.width }

// Height returns the output height in pixels
func (rt *Raytracer) Height() int { return rt.height }

// SamplingConfig returns the effective sampling settings
func (rt *Raytracer) SamplingConfig() scene.SamplingConfig { return rt.config }

// NewFramebuffer allocates a framebuffer matching the output size
func (rt *Raytracer) NewFramebuffer() *Framebuffer {
	return NewFramebuffer(rt.width, rt.height)
}

// Render renders the whole image with the configured samples per pixel
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	rt.logger.Info().
		Str("scene", rt.scene.Name).
		Int("width", rt.width).
		Int("height", rt.height).
		Int("samples", rt.config.SamplesPerPixel).
		Int("bounces", rt.config.MaxDepth).
		Int("workers", max(1, rt.options.Workers)).
		Int("tiles", len(rt.tiles)).
		Msg("Render started")

	fb := rt.NewFramebuffer()
	stats, err := rt.RenderPass(ctx, fb, rt.config.SamplesPerPixel, 0)
	if err != nil {
		return nil, stats, err
	}

	rt.logger.Info().
		Dur("elapsed", stats.Elapsed).
		Int("total_samples", stats.TotalSamples).
		Msg("Render finished")
	return fb, stats, nil
}

// RenderPass adds samples per pixel to fb. Each pass number draws fresh random
// streams, so accumulating several passes refines the image.
func (rt *Raytracer) RenderPass(ctx context.Context, fb *Framebuffer, samples, pass int) (RenderStats, error) {
	if fb.Width() != rt.width || fb.Height() != rt.height {
		return RenderStats{}, fmt.Errorf("framebuffer is %dx%d, want %dx%d", fb.Width(), fb.Height(), rt.width, rt.height)
	}

	startTime := time.Now()
	var stats RenderStats
	var err error
	if rt.options.Workers <= 1 {
		stats, err = rt.renderSerial(ctx, fb, samples, pass)
	} else {
		stats, err = rt.renderParallel(ctx, fb, samples, pass)
	}
	stats.Elapsed = time.Since(startTime)
	stats.finalize()
	return stats, err
}

func (rt *Raytracer) tileSampler(pass int, tile *Tile) core.Sampler {
	return core.NewSeededSampler(tileSeed(rt.options.Seed, pass, tile.ID))
}

// renderSerial renders every tile on the calling goroutine, checking ctx between tiles
func (rt *Raytracer) renderSerial(ctx context.Context, fb *Framebuffer, samples, pass int) (RenderStats, error) {
	stats := RenderStats{Workers: 1}
	for _, tile := range rt.tiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.add(rt.renderer.RenderTile(tile.Bounds, fb, rt.tileSampler(pass, tile), samples))
	}
	return stats, nil
}

// renderParallel fans the tiles out to a worker pool and joins on every result
func (rt *Raytracer) renderParallel(ctx context.Context, fb *Framebuffer, samples, pass int) (RenderStats, error) {
	pool := NewWorkerPool(ctx, rt.renderer, rt.options.Workers, len(rt.tiles))
	pool.Start()

	for _, tile := range rt.tiles {
		pool.SubmitTask(TileTask{
			Tile:        tile,
			Sampler:     rt.tileSampler(pass, tile),
			Samples:     samples,
			Framebuffer: fb,
		})
	}

	stats := RenderStats{Workers: pool.GetNumWorkers()}
	var firstErr error
	for i := 0; i < len(rt.tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			firstErr = fmt.Errorf("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.add(result.Stats)
	}
	pool.Stop()

	return stats, firstErr
}
