package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// errReferenceMismatch is returned when a render differs from its reference image by more than the tolerance
var errReferenceMismatch = errors.New("render differs from reference")

type cliOptions struct {
	configPath string
	sceneName  string
	sceneDir   string
	out        string
	samples    int
	bounces    int
	width      int
	workers    int
	seed       int64
	fast       bool
	list       bool
	reference  string
	tolerance  float64
	logLevel   string

	set map[string]bool // flags given on the command line
}

func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.StringVar(&o.sceneName, "scene", "default", "Built-in scene name or path to a .scene file")
	fs.StringVar(&o.sceneDir, "scenes", "scenes", "Directory searched for .scene files by -list")
	fs.StringVar(&o.out, "out", "", "Output image (.png or .ppm); default output/<scene>/render_<timestamp>.png")
	fs.IntVar(&o.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&o.bounces, "bounces", 0, "Maximum bounces per path (0 = scene default)")
	fs.IntVar(&o.width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&o.workers, "workers", 1, "Tile workers; 1 renders on the calling goroutine")
	fs.Int64Var(&o.seed, "seed", 0, "Random seed")
	fs.BoolVar(&o.fast, "fast", false, "Quick low-quality render at half resolution")
	fs.BoolVar(&o.list, "list", false, "List available scenes and exit")
	fs.StringVar(&o.reference, "reference", "", "Compare the render against this image")
	fs.Float64Var(&o.tolerance, "tolerance", 2, "Mean per-channel difference allowed by -reference")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// buildConfig loads the config file, if any, and applies explicitly set flags over it
func buildConfig(o cliOptions) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if o.set["scene"] || o.configPath == "" {
		cfg.Scene = o.sceneName
	}
	if o.set["samples"] {
		cfg.SamplesPerPixel = o.samples
	}
	if o.set["bounces"] {
		cfg.MaxBounces = o.bounces
	}
	if o.set["width"] {
		cfg.Width = o.width
	}
	if o.set["workers"] {
		cfg.Workers = o.workers
	}
	if o.set["seed"] {
		cfg.Seed = o.seed
	}
	return cfg, cfg.Validate()
}

// outputPath names a timestamped render under output/<scene>/
func outputPath(sceneName string, now time.Time) string {
	base := filepath.Base(sceneName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func listScenes(w io.Writer, dir string) error {
	groups, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s:\n", g.Name)
		for _, s := range g.Scenes {
			if s.Description != "" {
				fmt.Fprintf(w, "  %-20s %s\n", s.ID, s.Description)
			} else {
				fmt.Fprintf(w, "  %s\n", s.ID)
			}
		}
	}
	return nil
}

func run(ctx context.Context, args []string, stdout io.Writer, logger zerolog.Logger) error {
	o, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(o.logLevel); err == nil {
		logger = logger.Level(level)
	} else {
		return fmt.Errorf("invalid -log-level %q", o.logLevel)
	}

	if o.list {
		return listScenes(stdout, o.sceneDir)
	}

	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}
	sc, err := cfg.LoadScene()
	if err != nil {
		return err
	}

	path := o.out
	if path == "" {
		path = outputPath(cfg.Scene, time.Now())
	}

	opts := cfg.RenderOptions()
	opts.Logger = &logger

	var result renderer.RenderResult
	if o.fast {
		result, err = renderer.RenderFastToFile(ctx, sc, path, opts)
	} else {
		result, err = renderer.RenderToFile(ctx, sc, path, cfg.SamplesPerPixel, cfg.MaxBounces, opts)
	}
	if err != nil {
		return err
	}

	logger.Info().
		Str("scene", sc.Name).
		Int("width", result.Framebuffer.Width()).
		Int("height", result.Framebuffer.Height()).
		Float64("spp", result.Stats.AverageSamples).
		Dur("elapsed", result.Stats.Elapsed).
		Msg("Render complete")
	fmt.Fprintln(stdout, result.Path)

	if o.reference == "" {
		return nil
	}
	ref, err := loaders.LoadImage(o.reference)
	if err != nil {
		return err
	}
	cmp, err := result.Framebuffer.CompareTo(ref, o.tolerance)
	if err != nil {
		return err
	}
	logger.Info().
		Str("reference", o.reference).
		Float64("mean_diff", cmp.MeanDiff).
		Int("max_diff", cmp.MaxDiff).
		Msg("Reference compared")
	if !cmp.Within {
		return fmt.Errorf("%w: mean difference %.3f exceeds %.3f", errReferenceMismatch, cmp.MeanDiff, o.tolerance)
	}
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, log.Logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("Render failed")
		os.Exit(1)
	}
}
