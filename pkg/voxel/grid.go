// Package voxel classifies mesh volumes into boolean voxel grids and
// provides the grid operations used by the brick packer.
package voxel

import (
	"fmt"
	"slices"
)

// Grid is a dense 3D boolean array stored row-major: the last axis varies
// fastest. Axis meaning is up to the caller; the voxelizer produces (x, y, z)
// grids and the packer consumes (z, y, x) grids.
type Grid struct {
	dims  [3]int
	cells []bool
}

// NewGrid returns an all-false grid. Negative dimensions are treated as zero.
func NewGrid(d0, d1, d2 int) *Grid {
	d := [3]int{max(d0, 0), max(d1, 0), max(d2, 0)}
	return &Grid{dims: d, cells: make([]bool, d[0]*d[1]*d[2])}
}

// NewGridLike returns an all-false grid with the same dimensions as g.
func NewGridLike(g *Grid) *Grid {
	return NewGrid(g.dims[0], g.dims[1], g.dims[2])
}

// Dims returns the size along each axis.
func (g *Grid) Dims() [3]int { return g.dims }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether (a, b, c) addresses a cell.
func (g *Grid) InBounds(a, b, c int) bool {
	return a >= 0 && b >= 0 && c >= 0 && a < g.dims[0] && b < g.dims[1] && c < g.dims[2]
}

// Index returns the flat offset of (a, b, c). The indices must be in bounds.
func (g *Grid) Index(a, b, c int) int {
	return (a*g.dims[1]+b)*g.dims[2] + c
}

// Coords inverts Index.
func (g *Grid) Coords(i int) (a, b, c int) {
	c = i % g.dims[2]
	i /= g.dims[2]
	return i / g.dims[1], i % g.dims[1], c
}

// At returns the cell value; out-of-bounds reads are false.
func (g *Grid) At(a, b, c int) bool {
	if !g.InBounds(a, b, c) {
		return false
	}
	return g.cells[g.Index(a, b, c)]
}

// Set writes a cell. It panics on out-of-bounds writes.
func (g *Grid) Set(a, b, c int, v bool) {
	if !g.InBounds(a, b, c) {
		panic(fmt.Sprintf("voxel: Set(%d,%d,%d) outside %v", a, b, c, g.dims))
	}
	g.cells[g.Index(a, b, c)] = v
}

// Count returns the number of true cells.
func (g *Grid) Count() int {
	n := 0
	for _, v := range g.cells {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{dims: g.dims, cells: slices.Clone(g.cells)}
}

// Equal reports whether both grids have the same shape and contents.
func (g *Grid) Equal(o *Grid) bool {
	return g.dims == o.dims && slices.Equal(g.cells, o.cells)
}

// Nested returns the grid as [a][b][c] slices, the layout used by the
// JSON voxel dump.
func (g *Grid) Nested() [][][]bool {
	out := make([][][]bool, g.dims[0])
	for a := range out {
		out[a] = make([][]bool, g.dims[1])
		for b := range out[a] {
			start := g.Index(a, b, 0)
			out[a][b] = slices.Clone(g.cells[start : start+g.dims[2]])
		}
	}
	return out
}

// FromNested builds a grid from [a][b][c] slices. Ragged input is rejected.
func FromNested(v [][][]bool) (*Grid, error) {
	d0, d1, d2 := len(v), 0, 0
	if d0 > 0 {
		d1 = len(v[0])
		if d1 > 0 {
			d2 = len(v[0][0])
		}
	}
	g := NewGrid(d0, d1, d2)
	for a := range v {
		if len(v[a]) != d1 {
			return nil, fmt.Errorf("ragged grid: row %d has %d entries, want %d", a, len(v[a]), d1)
		}
		for b := range v[a] {
			if len(v[a][b]) != d2 {
				return nil, fmt.Errorf("ragged grid: row %d,%d has %d entries, want %d", a, b, len(v[a][b]), d2)
			}
			copy(g.cells[g.Index(a, b, 0):], v[a][b])
		}
	}
	return g, nil
}
