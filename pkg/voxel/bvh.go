package voxel

import (
	"sort"

	"github.com/taigrr/bricklayer/pkg/math3d"
)

// bvhMaxLeafSize bounds the triangles tested per leaf.
const bvhMaxLeafSize = 4

type bvhNode struct {
	box         math3d.AABB
	left, right *bvhNode
	tris        []triangle // non-nil ⇒ leaf
}

// bvh is a binary bounding volume hierarchy over triangle boxes, split at
// the median centroid of the axis with the widest centroid spread.
type bvh struct {
	root *bvhNode
}

func newBVH(tris []triangle) *bvh {
	if len(tris) == 0 {
		return &bvh{}
	}
	own := make([]triangle, len(tris))
	copy(own, tris)
	return &bvh{root: buildBVH(own)}
}

func buildBVH(tris []triangle) *bvhNode {
	box := tris[0].box
	cbox := math3d.BoundPoints(tris[0].box.Center())
	for i := 1; i < len(tris); i++ {
		box = box.Union(tris[i].box)
		cbox = cbox.Extend(tris[i].box.Center())
	}
	if len(tris) <= bvhMaxLeafSize {
		return &bvhNode{box: box, tris: tris}
	}

	axis := cbox.Size().MaxAxis()
	if cbox.Size().At(axis) <= 1e-18 {
		// all centroids coincide; fall back to the longest box extent
		axis = box.Size().MaxAxis()
	}
	sort.Slice(tris, func(i, j int) bool {
		return tris[i].box.Center().At(axis) < tris[j].box.Center().At(axis)
	})
	mid := len(tris) / 2
	return &bvhNode{
		box:   box,
		left:  buildBVH(tris[:mid]),
		right: buildBVH(tris[mid:]),
	}
}

func (b *bvh) Intersections(r math3d.Ray) int {
	if b.root == nil {
		return 0
	}
	n := 0
	stack := make([]*bvhNode, 0, 64)
	stack = append(stack, b.root)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, _, ok := node.box.IntersectRay(r); !ok {
			continue
		}
		if node.tris != nil {
			for i := range node.tris {
				if node.tris[i].hit(r) {
					n++
				}
			}
			continue
		}
		stack = append(stack, node.left, node.right)
	}
	return n
}
