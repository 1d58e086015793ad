package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// fixedSampler replays a scripted sequence of values, cycling when exhausted
type fixedSampler struct {
	values []float64
	next   int
}

func newFixedSampler(values ...float64) *fixedSampler {
	return &fixedSampler{values: values}
}

func (f *fixedSampler) Get1D() float64 {
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

func (f *fixedSampler) Get2D() core.Vec2 {
	return core.NewVec2(f.Get1D(), f.Get1D())
}

func (f *fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.Get1D(), f.Get1D(), f.Get1D())
}

func hitAtOrigin(normal core.Vec3, frontFace bool, m Material) HitRecord {
	return HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    normal,
		T:         1.0,
		FrontFace: frontFace,
		Material:  m,
	}
}
