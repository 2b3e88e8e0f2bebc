package voxel

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/bricklayer/pkg/math3d"
)

const (
	// parallelEps rejects rays lying in the triangle plane.
	parallelEps = 1e-12
	// hitEps discards hits at the ray origin.
	hitEps = 1e-9
)

// triangle caches the origin corner and edges for Möller–Trumbore.
type triangle struct {
	a, e1, e2 math3d.Vec3
	box       math3d.AABB
}

func newTriangle(a, b, c math3d.Vec3) triangle {
	return triangle{
		a:   a,
		e1:  b.Sub(a),
		e2:  c.Sub(a),
		box: padBox(math3d.BoundPoints(a, b, c)),
	}
}

// padBox grows b by a relative epsilon so flat, axis-aligned triangles
// still have a box the slab test cannot round away.
func padBox(b math3d.AABB) math3d.AABB {
	eps := math3d.Splat(1e-9 * (1 + b.Size().Len() + b.Center().Len()))
	return math3d.AABB{Min: b.Min.Sub(eps), Max: b.Max.Add(eps)}
}

// hit reports whether the ray crosses the triangle at t > hitEps.
func (t *triangle) hit(r math3d.Ray) bool {
	p := r.Dir.Cross(t.e2)
	det := t.e1.Dot(p)
	if math.Abs(det) < parallelEps {
		return false
	}
	inv := 1 / det
	s := r.Origin.Sub(t.a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return false
	}
	q := s.Cross(t.e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	return t.e2.Dot(q)*inv > hitEps
}

// sampleDirection draws azimuth uniformly in [0, 2π) and polar angle
// uniformly in [0, π]. The result is not area-uniform: directions cluster
// near the poles. Classification results depend on this exact draw order.
func sampleDirection(rng *rand.Rand) math3d.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := rng.Float64() * math.Pi
	sp := math.Sin(phi)
	return math3d.V3(sp*math.Cos(theta), sp*math.Sin(theta), math.Cos(phi))
}

// splitmix64 is the finaliser used to derive independent per-cell streams.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// cellSeed derives the PCG seed pair for one cell from the run seed.
func cellSeed(seed int64, cell int) (uint64, uint64) {
	h := splitmix64(uint64(seed) ^ splitmix64(uint64(cell)))
	return h, splitmix64(h)
}
