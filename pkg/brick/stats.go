package brick

import (
	"slices"

	"github.com/samber/lo"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Stats summarises a packing pass.
type Stats struct {
	Solid    int           `json:"solid"`
	Filled   int           `json:"filled"`
	Unfilled int           `json:"unfilled"`
	Bricks   int           `json:"bricks"`
	PerShape map[Shape]int `json:"-"`
}

// Compute derives Stats from an occupancy grid, its filled mask and the
// placements that produced it.
func Compute(occupancy, filled *voxel.Grid, placements []Placement) Stats {
	solid := occupancy.Count()
	n := filled.Count()
	return Stats{
		Solid:    solid,
		Filled:   n,
		Unfilled: solid - n,
		Bricks:   len(placements),
		PerShape: lo.CountValuesBy(placements, func(p Placement) Shape { return p.Shape }),
	}
}

// ShapeCount is one row of a per-shape breakdown.
type ShapeCount struct {
	Shape Shape
	Count int
}

// Breakdown returns the per-shape counts in packing order.
func (s Stats) Breakdown() []ShapeCount {
	rows := lo.MapToSlice(s.PerShape, func(k Shape, v int) ShapeCount { return ShapeCount{k, v} })
	slices.SortFunc(rows, func(a, b ShapeCount) int { return compareShapes(a.Shape, b.Shape) })
	return rows
}

// FillRatio is the fraction of solid cells covered by bricks.
func (s Stats) FillRatio() float64 {
	if s.Solid == 0 {
		return 0
	}
	return float64(s.Filled) / float64(s.Solid)
}
