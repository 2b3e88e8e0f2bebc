package render

import (
	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// LayerView draws horizontal slices of a packed model. Grids are indexed
// (z, y, x); each slice is drawn with x to the right and y downward.
type LayerView struct {
	Occupancy  *voxel.Grid
	Placements []brick.Placement
	// Cell is the pixel size of one grid cell. Values below 1 mean 2.
	Cell int

	owner []int // flat (z, y, x) index -> placement index, -1 if none
}

// NewLayerView indexes placements by cell.
func NewLayerView(occupancy *voxel.Grid, placements []brick.Placement) *LayerView {
	v := &LayerView{Occupancy: occupancy, Placements: placements, Cell: 2}
	v.owner = make([]int, occupancy.Len())
	for i := range v.owner {
		v.owner[i] = -1
	}
	for i, p := range placements {
		p.Cells(func(z, y, x int) {
			if occupancy.InBounds(z, y, x) {
				v.owner[occupancy.Index(z, y, x)] = i
			}
		})
	}
	return v
}

func (v *LayerView) cell() int {
	if v.Cell < 1 {
		return 2
	}
	return v.Cell
}

// Layers returns the number of z slices.
func (v *LayerView) Layers() int { return v.Occupancy.Dims()[0] }

// Layer rasterises slice z. Bricks take their attribute colour with a
// darker rim once cells are at least three pixels wide; solid cells left
// unfilled are grey; empty cells stay transparent.
func (v *LayerView) Layer(z int) *Framebuffer {
	d := v.Occupancy.Dims()
	cs := v.cell()
	fb := NewFramebuffer(d[2]*cs, d[1]*cs)
	if z < 0 || z >= d[0] {
		return fb
	}

	drawn := make(map[int]bool)
	for y := range d[1] {
		for x := range d[2] {
			if !v.Occupancy.At(z, y, x) {
				continue
			}
			owner := v.owner[v.Occupancy.Index(z, y, x)]
			if owner < 0 {
				fb.FillRect(x*cs, y*cs, cs, cs, ColorUnfilled)
				continue
			}
			if drawn[owner] {
				continue
			}
			drawn[owner] = true
			p := v.Placements[owner]
			c := AttributeColor(p.Attribute)
			px, py := p.Origin[2]*cs, p.Origin[1]*cs
			w, h := p.Shape.DX*cs, p.Shape.DY*cs
			fb.FillRect(px, py, w, h, c)
			if cs >= 3 {
				fb.StrokeRect(px, py, w, h, Shade(c, 0.6))
			}
		}
	}
	return fb
}

// Sheet lays every slice out left to right, wrapping after cols slices,
// bottom layer first, with a one-pixel gutter between slices.
func (v *LayerView) Sheet(cols int) *Framebuffer {
	n := v.Layers()
	if cols < 1 {
		cols = 1
	}
	cols = min(cols, max(n, 1))
	rows := (n + cols - 1) / cols
	d := v.Occupancy.Dims()
	cs := v.cell()
	w, h := d[2]*cs, d[1]*cs

	fb := NewFramebuffer(cols*(w+1)-1, max(rows*(h+1)-1, 0))
	fb.Clear(ColorGrid)
	for z := range n {
		col, row := z%cols, z/cols
		ox, oy := col*(w+1), row*(h+1)
		fb.FillRect(ox, oy, w, h, ColorEmpty)
		fb.Blit(v.Layer(z), ox, oy)
	}
	return fb
}
