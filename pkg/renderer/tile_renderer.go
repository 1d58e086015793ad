package renderer

import (
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// Tile represents a rectangular region of the framebuffer. Bounds use
// framebuffer coordinates, so Min.Y = 0 is the bottom row.
type Tile struct {
	ID     int
	Bounds image.Rectangle
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}

// tileSeed derives an independent random stream for a tile in a given pass so
// results do not depend on which worker renders the tile
func tileSeed(seed int64, pass, tileID int) int64 {
	h := splitmix64(uint64(seed))
	h = splitmix64(h ^ uint64(pass))
	h = splitmix64(h ^ uint64(tileID))
	return int64(h)
}

// splitmix64 is the SplitMix64 finalizer: a bijective mix of x
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// TileRenderer renders the pixels of one tile with an integrator
type TileRenderer struct {
	camera     *geometry.Camera
	world      integrator.World
	integrator integrator.Integrator
	width      int
	height     int
}

// NewTileRenderer creates a new tile renderer for an image of the given size
func NewTileRenderer(camera *geometry.Camera, world integrator.World, integratorInst integrator.Integrator, width, height int) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		world:      world,
		integrator: integratorInst,
		width:      width,
		height:     height,
	}
}

// RenderTile adds samples jittered rays to every pixel inside bounds
func (tr *TileRenderer) RenderTile(bounds image.Rectangle, fb *Framebuffer, sampler core.Sampler, samples int) RenderStats {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			pixel := fb.Pixel(i, j)
			for sample := 0; sample < samples; sample++ {
				jitter := sampler.Get2D()
				s := (float64(i) + jitter.X) / float64(tr.width)
				t := (float64(j) + jitter.Y) / float64(tr.height)

				ray := tr.camera.GetRay(s, t)
				pixel.AddSample(tr.integrator.RayColor(ray, tr.world, sampler))
			}
		}
	}

	pixels := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:  pixels,
		TotalSamples: pixels * samples,
		Tiles:        1,
	}
}
