package brick

import (
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/run"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Packer greedily tiles an occupancy grid with catalog bricks.
//
// Pack is a single pass: each solid, unfilled cell gets the largest brick
// that fits and is supported, or stays unfilled for good.
type Packer struct {
	Catalog Catalog
	Order   Traversal
	Support SupportPolicy

	// OnPlace, if set, observes each placement after its cells are marked.
	// The grid must not be modified.
	OnPlace func(p Placement, filled *voxel.Grid)
}

// NewPacker returns a Packer with lexicographic traversal and footprint
// support.
func NewPacker(c Catalog) *Packer {
	return &Packer{Catalog: c, Order: Lexicographic, Support: SupportFootprint}
}

// Result is the outcome of a packing pass.
type Result struct {
	Filled     *voxel.Grid
	Placements []Placement
	Stats      Stats
}

func (p *Packer) validate(occupancy *voxel.Grid) error {
	if occupancy == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "nil occupancy grid")
	}
	if p.Catalog.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "empty brick catalog")
	}
	switch p.Order {
	case "", Lexicographic, Centered:
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "unknown traversal %q", p.Order)
	}
	if p.Support != "" && !p.Support.valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown support policy %q", p.Support)
	}
	return nil
}

// Pack tiles occupancy, indexed (z, y, x). The occupancy grid is not
// modified. Progress is reported once per z layer.
func (p *Packer) Pack(rc *run.Context, occupancy *voxel.Grid) (*Result, error) {
	if err := p.validate(occupancy); err != nil {
		return nil, err
	}
	order := p.Order
	if order == "" {
		order = Lexicographic
	}
	support := p.Support
	if support == "" {
		support = SupportFootprint
	}

	shapes := p.Catalog.BySize()
	dims := occupancy.Dims()
	filled := voxel.NewGridLike(occupancy)
	var placements []Placement

	counter := rc.Counter(run.StagePack, dims[0])
	order.visit(dims, func(z, y, x int) {
		if !occupancy.At(z, y, x) || filled.At(z, y, x) {
			return
		}
		for _, e := range shapes {
			if !fits(occupancy, filled, e.Shape, z, y, x) || !support.supported(filled, e.Shape, z, y, x) {
				continue
			}
			pl := Placement{Shape: e.Shape, Origin: [3]int{z, y, x}, Attribute: e.Attribute}
			pl.Cells(func(cz, cy, cx int) { filled.Set(cz, cy, cx, true) })
			placements = append(placements, pl)
			if p.OnPlace != nil {
				p.OnPlace(pl, filled)
			}
			return
		}
	}, func(int) { counter.Add(1) })

	stats := Compute(occupancy, filled, placements)
	rc.Debugf("packed %d bricks, %d of %d solid cells unfilled", stats.Bricks, stats.Unfilled, stats.Solid)
	return &Result{Filled: filled, Placements: placements, Stats: stats}, nil
}

// fits reports whether the box of s anchored at (z, y, x) lies inside the
// grid and covers only solid, unfilled cells.
func fits(occupancy, filled *voxel.Grid, s Shape, z, y, x int) bool {
	d := occupancy.Dims()
	if z+s.DZ > d[0] || y+s.DY > d[1] || x+s.DX > d[2] {
		return false
	}
	for cz := z; cz < z+s.DZ; cz++ {
		for cy := y; cy < y+s.DY; cy++ {
			for cx := x; cx < x+s.DX; cx++ {
				if !occupancy.At(cz, cy, cx) || filled.At(cz, cy, cx) {
					return false
				}
			}
		}
	}
	return true
}
