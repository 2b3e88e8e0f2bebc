package voxel

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
	"github.com/taigrr/bricklayer/pkg/math3d"
)

const (
	rtreeMinChildren = 8
	rtreeMaxChildren = 32
	// rtreeSegments is how many pieces a ray's path through the mesh
	// bounds is cut into before querying; each piece queries its own box.
	rtreeSegments = 32
)

type rtreeTriangle struct {
	tri  triangle
	rect rtreego.Rect
}

func (t *rtreeTriangle) Bounds() rtreego.Rect { return t.rect }

// rtreeIndex answers ray queries by walking the ray through the mesh
// bounds in short segments and collecting R-tree candidates per segment.
type rtreeIndex struct {
	tree   *rtreego.Rtree
	bounds math3d.AABB
	pad    float64
}

func newRTreeIndex(tris []triangle) *rtreeIndex {
	idx := &rtreeIndex{bounds: math3d.EmptyAABB()}
	for i := range tris {
		idx.bounds = idx.bounds.Union(tris[i].box)
	}
	if len(tris) == 0 {
		return idx
	}
	// rtreego treats touching boxes as disjoint, so every box is padded.
	idx.pad = math.Max(idx.bounds.Size().Len()*1e-9, 1e-12)

	objs := make([]rtreego.Spatial, len(tris))
	for i := range tris {
		objs[i] = &rtreeTriangle{tri: tris[i], rect: idx.rect(tris[i].box.Min, tris[i].box.Max)}
	}
	idx.tree = rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, objs...)
	return idx
}

func (x *rtreeIndex) rect(from, to math3d.Vec3) rtreego.Rect {
	p := math3d.Splat(x.pad)
	a, b := from.Sub(p), to.Add(p)
	r, _ := rtreego.NewRectFromPoints(rtreego.Point{a.X, a.Y, a.Z}, rtreego.Point{b.X, b.Y, b.Z})
	return r
}

func (x *rtreeIndex) Intersections(r math3d.Ray) int {
	if x.tree == nil {
		return 0
	}
	t0, t1, ok := x.bounds.IntersectRay(r)
	if !ok {
		return 0
	}

	var candidates []rtreego.Spatial
	step := (t1 - t0) / rtreeSegments
	for i := range rtreeSegments {
		a := r.Origin.Add(r.Dir.Scale(t0 + step*float64(i)))
		b := r.Origin.Add(r.Dir.Scale(t0 + step*float64(i+1)))
		candidates = append(candidates, x.tree.SearchIntersect(x.rect(a.Min(b), a.Max(b)))...)
	}

	n := 0
	for _, c := range lo.Uniq(candidates) {
		t := c.(*rtreeTriangle)
		if t.tri.hit(r) {
			n++
		}
	}
	return n
}
