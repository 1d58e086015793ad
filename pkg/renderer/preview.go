package renderer

import (
	"context"
	"image"

	"github.com/df07/go-pathtracer/pkg/scene"
)

// PreviewConfig contains configuration for the interactive preview loop
type PreviewConfig struct {
	SamplesPerPass int  // Samples per pixel added by each frame
	MaxDepth       int  // Bounce budget; 0 uses the scene's
	Accumulate     bool // Average frames together instead of starting each one fresh
	MaxFrames      int  // Stop after this many frames; 0 runs until cancelled
}

// DefaultPreviewConfig returns sensible default values
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		SamplesPerPass: 1,
		MaxDepth:       10,
		Accumulate:     true,
	}
}

// Frame is one published preview image
type Frame struct {
	Number  int         // 1-based frame counter
	Samples int         // Samples per pixel in the image
	Image   *image.RGBA // Top row first
	Stats   RenderStats // Stats of the pass that produced the frame
}

// Preview re-renders a scene continuously with the same integrator
type Preview struct {
	raytracer *Raytracer
	config    PreviewConfig
	options   Options
}

// NewPreview creates a preview loop for sc
func NewPreview(sc *scene.Scene, config PreviewConfig, options Options) (*Preview, error) {
	if config.SamplesPerPass <= 0 {
		config.SamplesPerPass = 1
	}
	rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: config.SamplesPerPass, MaxDepth: config.MaxDepth}, options)
	if err != nil {
		return nil, err
	}
	return &Preview{raytracer: rt, config: config, options: options}, nil
}

// Width returns the preview width in pixels
func (p *Preview) Width() int { return p.raytracer.Width() }

// Height returns the preview height in pixels
func (p *Preview) Height() int { return p.raytracer.Height() }

// Run renders frames until ctx is cancelled or MaxFrames is reached. Both channels
// are closed when the loop ends; cancellation is not reported as an error.
func (p *Preview) Run(ctx context.Context) (<-chan Frame, <-chan error) {
	frameChan := make(chan Frame, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		logger := p.options.logger()
		fb := p.raytracer.NewFramebuffer()
		samples := 0

		logger.Info().
			Int("width", p.Width()).
			Int("height", p.Height()).
			Bool("accumulate", p.config.Accumulate).
			Msg("Preview started")

		for frame := 1; p.config.MaxFrames <= 0 || frame <= p.config.MaxFrames; frame++ {
			if ctx.Err() != nil {
				logger.Info().Int("frames", frame-1).Msg("Preview stopped")
				return
			}

			if !p.config.Accumulate {
				fb.Reset()
				samples = 0
			}

			stats, err := p.raytracer.RenderPass(ctx, fb, p.config.SamplesPerPass, frame)
			if err != nil {
				if ctx.Err() == nil {
					errChan <- err
				}
				return
			}
			samples += p.config.SamplesPerPass

			logger.Debug().
				Int("frame", frame).
				Int("samples", samples).
				Dur("elapsed", stats.Elapsed).
				Msg("Frame rendered")

			result := Frame{
				Number:  frame,
				Samples: samples,
				Image:   fb.Image(),
				Stats:   stats,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, errChan
}
