package math3d

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Splat(inf), Max: Splat(-inf)}
}

// BoundPoints returns the tightest box around the given points.
func BoundPoints(pts ...Vec3) AABB {
	b := EmptyAABB()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Extend grows the box to contain p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the center of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Empty reports whether the box has never been extended.
func (b AABB) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// ContainsPoint returns true if the point is inside the box (inclusive).
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Ray is a half-line with precomputed reciprocal direction for slab tests.
type Ray struct {
	Origin Vec3
	Dir    Vec3
	inv    Vec3
}

// NewRay builds a Ray. Zero direction components yield infinite reciprocals,
// which the slab test handles as parallel slabs.
func NewRay(origin, dir Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		inv:    Vec3{1 / dir.X, 1 / dir.Y, 1 / dir.Z},
	}
}

// IntersectRay returns the parametric interval [tmin, tmax] where the ray
// is inside the box, clipped to t >= 0. ok is false when the ray misses.
func (b AABB) IntersectRay(r Ray) (tmin, tmax float64, ok bool) {
	tmin, tmax = 0, math.Inf(1)
	for axis := range 3 {
		o := r.Origin.At(axis)
		inv := r.inv.At(axis)
		lo, hi := b.Min.At(axis), b.Max.At(axis)
		if math.IsInf(inv, 0) {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}
