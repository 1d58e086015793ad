package core

// Sampler provides random sampling for rendering algorithms.
// Each rendering worker owns its own Sampler; implementations are not safe for concurrent use.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}
