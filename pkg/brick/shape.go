// Package brick tiles occupancy grids with rectangular bricks.
//
// Grids handed to this package are indexed (z, y, x) with z the height
// axis; shapes and origins use the same order.
package brick

import (
	"cmp"
	"fmt"
)

// Shape is a brick's extent in cells along (z, y, x).
type Shape struct {
	DZ, DY, DX int
}

// Volume returns the number of cells the shape covers.
func (s Shape) Volume() int { return s.DZ * s.DY * s.DX }

// Rotated returns the shape turned a quarter turn about the height axis.
func (s Shape) Rotated() Shape { return Shape{DZ: s.DZ, DY: s.DX, DX: s.DY} }

// Valid reports whether every extent is positive.
func (s Shape) Valid() bool { return s.DZ > 0 && s.DY > 0 && s.DX > 0 }

// Array returns [dz, dy, dx].
func (s Shape) Array() [3]int { return [3]int{s.DZ, s.DY, s.DX} }

func (s Shape) String() string { return fmt.Sprintf("%dx%dx%d", s.DZ, s.DY, s.DX) }

// compareShapes orders by descending volume, then ascending (dz, dy, dx).
func compareShapes(a, b Shape) int {
	if c := cmp.Compare(b.Volume(), a.Volume()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DZ, b.DZ); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DY, b.DY); c != 0 {
		return c
	}
	return cmp.Compare(a.DX, b.DX)
}

// Placement records a brick anchored with its minimum corner at Origin
// (z, y, x).
type Placement struct {
	Shape     Shape
	Origin    [3]int
	Attribute string
}

// Contains reports whether the cell lies inside the placed brick.
func (p Placement) Contains(z, y, x int) bool {
	return z >= p.Origin[0] && z < p.Origin[0]+p.Shape.DZ &&
		y >= p.Origin[1] && y < p.Origin[1]+p.Shape.DY &&
		x >= p.Origin[2] && x < p.Origin[2]+p.Shape.DX
}

// Cells calls fn for every cell the placement covers.
func (p Placement) Cells(fn func(z, y, x int)) {
	for z := p.Origin[0]; z < p.Origin[0]+p.Shape.DZ; z++ {
		for y := p.Origin[1]; y < p.Origin[1]+p.Shape.DY; y++ {
			for x := p.Origin[2]; x < p.Origin[2]+p.Shape.DX; x++ {
				fn(z, y, x)
			}
		}
	}
}
