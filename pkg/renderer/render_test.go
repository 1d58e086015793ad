package renderer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderToFile_RoundTrip(t *testing.T) {
	sc := newTestScene(t, "default", 40)
	var logs testLogWriter
	logger := zerolog.New(&logs)

	result, err := RenderToFile(context.Background(), sc, filepath.Join(t.TempDir(), "render"), 4, 4, Options{Logger: &logger})
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(result.Path))
	assert.Equal(t, 40*22*4, result.Stats.TotalSamples)
	assert.Contains(t, logs.String(), "Render finished")

	ref, err := loaders.LoadImage(result.Path)
	require.NoError(t, err)

	comparison, err := result.Framebuffer.CompareTo(ref, 0)
	require.NoError(t, err)
	assert.True(t, comparison.Within)
	assert.Zero(t, comparison.MaxDiff)
}

func TestRenderFastToFile(t *testing.T) {
	sc := newTestScene(t, "cornell", 64)

	result, err := RenderFastToFile(context.Background(), sc, filepath.Join(t.TempDir(), "fast.ppm"), Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, ".ppm", filepath.Ext(result.Path))
	assert.Equal(t, 32, result.Framebuffer.Width())
	assert.Equal(t, 32, result.Framebuffer.Height())
	assert.Equal(t, float64(FastSamples), result.Stats.AverageSamples)
	assert.Equal(t, 2, result.Stats.Workers)
}

func TestRenderToFile_InvalidSettings(t *testing.T) {
	sc := newTestScene(t, "default", 16)
	sc.SamplingConfig.MaxDepth = 0

	_, err := RenderToFile(context.Background(), sc, filepath.Join(t.TempDir(), "x.png"), 1, 0, Options{})
	assert.Error(t, err)
}
