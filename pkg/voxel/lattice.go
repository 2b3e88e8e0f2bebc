package voxel

import (
	"github.com/taigrr/bricklayer/pkg/math3d"
)

// Lattice maps grid indices to world-space cell centres.
type Lattice struct {
	Min    math3d.Vec3
	Pitch  math3d.Vec3
	Offset math3d.Vec3
	Dims   [3]int
}

// NewLattice sizes a lattice for bounds: ceil(extent/pitch) cells per axis,
// with the leftover (dims*pitch - extent) split in half as Offset.
func NewLattice(bounds math3d.AABB, pitch math3d.Vec3) Lattice {
	extent := bounds.Size()
	dims := extent.DivVec(pitch).Ceil()
	return Lattice{
		Min:    bounds.Min,
		Pitch:  pitch,
		Offset: dims.Mul(pitch).Sub(extent).Scale(0.5),
		Dims:   [3]int{int(dims.X), int(dims.Y), int(dims.Z)},
	}
}

// Center returns min + pitch*(index+0.5) + offset.
func (l Lattice) Center(x, y, z int) math3d.Vec3 {
	idx := math3d.V3(float64(x)+0.5, float64(y)+0.5, float64(z)+0.5)
	return l.Min.Add(l.Pitch.Mul(idx)).Add(l.Offset)
}

// Cells returns the total cell count.
func (l Lattice) Cells() int {
	return l.Dims[0] * l.Dims[1] * l.Dims[2]
}
