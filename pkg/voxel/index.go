package voxel

import (
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
)

// Index counts ray/surface crossings. Implementations must return the same
// count for the same ray and be safe for concurrent use.
type Index interface {
	Intersections(r math3d.Ray) int
}

// IndexKind selects an Index implementation.
type IndexKind string

const (
	IndexBrute IndexKind = "brute"
	IndexBVH   IndexKind = "bvh"
	IndexRTree IndexKind = "rtree"
)

// IndexKinds lists the accepted kinds.
var IndexKinds = []IndexKind{IndexBrute, IndexBVH, IndexRTree}

// ParseIndexKind validates a user-supplied kind name.
func ParseIndexKind(s string) (IndexKind, error) {
	for _, k := range IndexKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidParameter, "unknown index %q (want one of %v)", s, IndexKinds)
}

// NewIndex builds the requested index over the mesh triangles.
func NewIndex(kind IndexKind, mesh *models.Mesh) (Index, error) {
	tris := make([]triangle, len(mesh.Faces))
	for i := range mesh.Faces {
		a, b, c := mesh.Triangle(i)
		tris[i] = newTriangle(a, b, c)
	}

	switch kind {
	case IndexBrute, "":
		return bruteIndex(tris), nil
	case IndexBVH:
		return newBVH(tris), nil
	case IndexRTree:
		return newRTreeIndex(tris), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidParameter, "unknown index %q", kind)
}

// bruteIndex tests every triangle.
type bruteIndex []triangle

func (b bruteIndex) Intersections(r math3d.Ray) int {
	n := 0
	for i := range b {
		if b[i].hit(r) {
			n++
		}
	}
	return n
}
