package renderer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, name string, width int) *scene.Scene {
	t.Helper()
	sc, err := scene.NewScene(name, scene.Options{Camera: geometry.CameraConfig{Width: width}})
	require.NoError(t, err)
	return sc
}

func TestRaytracer_LightSceneReturnsEmission(t *testing.T) {
	sc := newTestScene(t, "light", 32)
	rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: 1, MaxDepth: 1}, Options{})
	require.NoError(t, err)

	fb, stats, err := rt.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 32*18, stats.TotalPixels)
	assert.Equal(t, 32*18, stats.TotalSamples)
	assert.Equal(t, 1.0, stats.AverageSamples)

	emission := core.NewColor(4, 2, 1)
	for j := 0; j < fb.Height(); j++ {
		for i := 0; i < fb.Width(); i++ {
			require.Equal(t, emission, fb.Color(i, j), "pixel (%d,%d)", i, j)
		}
	}

	// Every channel is over-bright and saturates
	for _, b := range fb.ToRGB() {
		require.Equal(t, byte(255), b)
	}
}

func TestRaytracer_DeterministicAcrossWorkers(t *testing.T) {
	sc := newTestScene(t, "materials", 48)
	config := scene.SamplingConfig{SamplesPerPixel: 4, MaxDepth: 8}

	render := func(workers, tileSize int) []byte {
		rt, err := NewRaytracer(sc, config, Options{Workers: workers, TileSize: tileSize, Seed: 11})
		require.NoError(t, err)
		fb, _, err := rt.Render(context.Background())
		require.NoError(t, err)
		return fb.ToRGB()
	}

	serial := render(1, 16)
	assert.Equal(t, serial, render(4, 16))
	assert.Equal(t, serial, render(3, 16))

	// A different seed changes the noise
	rt, err := NewRaytracer(sc, config, Options{TileSize: 16, Seed: 12})
	require.NoError(t, err)
	other, _, err := rt.Render(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, serial, other.ToRGB())
}

func TestRaytracer_Cancelled(t *testing.T) {
	sc := newTestScene(t, "default", 32)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: 1, MaxDepth: 2}, Options{Workers: workers})
		require.NoError(t, err)
		_, _, err = rt.Render(ctx)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestRaytracer_SizeAndConfig(t *testing.T) {
	sc := newTestScene(t, "cornell", 100)

	rt, err := NewRaytracer(sc, scene.SamplingConfig{}, Options{Scale: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 50, rt.Width())
	assert.Equal(t, 50, rt.Height())
	assert.Equal(t, sc.SamplingConfig, rt.SamplingConfig(), "zero config falls back to the scene")

	rt, err = NewRaytracer(sc, scene.SamplingConfig{MaxDepth: 3}, Options{Width: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, rt.Width())
	assert.Equal(t, 3, rt.SamplingConfig().MaxDepth)
	assert.Equal(t, sc.SamplingConfig.SamplesPerPixel, rt.SamplingConfig().SamplesPerPixel)

	_, err = NewRaytracer(&scene.Scene{}, scene.SamplingConfig{}, Options{})
	assert.Error(t, err)

	_, err = rt.RenderPass(context.Background(), NewFramebuffer(1, 1), 1, 0)
	assert.Error(t, err)
}

// averageRGB returns the mean output bytes over a rectangle of rows/columns of the top-down image
func averageRGB(rgb []byte, width, x0, x1, y0, y1 int) (r, g, b float64) {
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			offset := (y*width + x) * 3
			r += float64(rgb[offset])
			g += float64(rgb[offset+1])
			b += float64(rgb[offset+2])
			n++
		}
	}
	return r / float64(n), g / float64(n), b / float64(n)
}

// defaultReferenceTolerance bounds the mean channel difference between a 100 spp
// render and the converged reference. Sampling noise alone measures about 0.86;
// cutting the bounce budget to 3 gives 1.6.
const defaultReferenceTolerance = 1.25

func TestRaytracer_DefaultSceneMatchesReference(t *testing.T) {
	ref, err := loaders.LoadImage(filepath.Join("testdata", "default_reference.png"))
	require.NoError(t, err)

	sc := newTestScene(t, "default", 64)
	rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: 100, MaxDepth: 10}, Options{Workers: 4, Seed: 1})
	require.NoError(t, err)

	fb, _, err := rt.Render(context.Background())
	require.NoError(t, err)

	cmp, err := fb.CompareTo(ref, defaultReferenceTolerance)
	require.NoError(t, err)
	assert.True(t, cmp.Within, "mean diff %.3f, max diff %d", cmp.MeanDiff, cmp.MaxDiff)

	// Too few bounces darkens the shadowed regions
	rt, err = NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: 100, MaxDepth: 2}, Options{Workers: 4, Seed: 1})
	require.NoError(t, err)
	shallow, _, err := rt.Render(context.Background())
	require.NoError(t, err)
	cmp, err = shallow.CompareTo(ref, defaultReferenceTolerance)
	require.NoError(t, err)
	assert.False(t, cmp.Within, "mean diff %.3f", cmp.MeanDiff)
}

func TestRaytracer_DefaultSceneEndToEnd(t *testing.T) {
	sc := newTestScene(t, "default", 64)
	rt, err := NewRaytracer(sc, scene.SamplingConfig{SamplesPerPixel: 32, MaxDepth: 10}, Options{Workers: 2, Seed: 1})
	require.NoError(t, err)

	fb, _, err := rt.Render(context.Background())
	require.NoError(t, err)
	rgb := fb.ToRGB()
	width, height := fb.Width(), fb.Height()
	require.Equal(t, 64, width)
	require.Equal(t, 36, height)

	// Centre: the diffuse sphere, a light-to-mid grey
	r, g, b := averageRGB(rgb, width, 28, 36, 14, 22)
	for _, c := range []float64{r, g, b} {
		assert.Greater(t, c, 60.0)
		assert.Less(t, c, 230.0)
	}

	// Top edge: open sky, bluer than it is red
	r, _, b = averageRGB(rgb, width, 0, width, 0, 1)
	assert.Greater(t, b, r+20)
	assert.Greater(t, b, 240.0)

	// Bottom rows: lit ground
	r, g, b = averageRGB(rgb, width, 0, width, height-2, height)
	assert.Greater(t, (r+g+b)/3, 60.0)
}
