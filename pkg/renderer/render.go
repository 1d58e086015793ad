package renderer

import (
	"context"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Fast render settings trade quality for turnaround
const (
	FastSamples = 8
	FastBounces = 8
	FastScale   = 0.5
)

// RenderResult describes a finished render written to disk
type RenderResult struct {
	Path        string // Final path, including any appended extension
	Framebuffer *Framebuffer
	Stats       RenderStats
}

// RenderToFile renders sc with the given samples per pixel and bounce budget and saves it to path
func RenderToFile(ctx context.Context, sc *scene.Scene, path string, samples, bounces int, options Options) (RenderResult, error) {
	rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: samples, MaxDepth: bounces}, options)
	if err != nil {
		return RenderResult{}, err
	}

	fb, stats, err := rt.Render(ctx)
	if err != nil {
		return RenderResult{Stats: stats}, fmt.Errorf("render: %w", err)
	}

	savedPath, err := loaders.SaveImage(path, fb.Width(), fb.Height(), fb.ToRGB())
	if err != nil {
		return RenderResult{Framebuffer: fb, Stats: stats}, err
	}

	options.logger().Info().Str("path", savedPath).Msg("Image saved")
	return RenderResult{Path: savedPath, Framebuffer: fb, Stats: stats}, nil
}

// RenderFastToFile renders a quick low-quality preview at half resolution
func RenderFastToFile(ctx context.Context, sc *scene.Scene, path string, options Options) (RenderResult, error) {
	options.Scale = FastScale
	return RenderToFile(ctx, sc, path, FastSamples, FastBounces, options)
}
