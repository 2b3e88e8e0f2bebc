package brick

import (
	"strings"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// SupportPolicy decides whether a brick resting at a given origin is held up
// by bricks already placed in the layer below.
type SupportPolicy string

const (
	// SupportFootprint requires a filled cell directly beneath the brick.
	SupportFootprint SupportPolicy = "footprint"
	// SupportWindow accepts any filled cell below within one brick's extent
	// of the footprint on either side along y and x.
	SupportWindow SupportPolicy = "window"
)

// SupportPolicies lists the accepted policy names.
var SupportPolicies = []SupportPolicy{SupportFootprint, SupportWindow}

// ParseSupport maps a flag value to a SupportPolicy. The empty string
// selects SupportFootprint.
func ParseSupport(s string) (SupportPolicy, error) {
	switch SupportPolicy(strings.ToLower(s)) {
	case "", SupportFootprint:
		return SupportFootprint, nil
	case SupportWindow:
		return SupportWindow, nil
	}
	return "", errors.New(errors.ErrCodeInvalidParameter, "unknown support policy %q", s)
}

func (sp SupportPolicy) valid() bool {
	return sp == SupportFootprint || sp == SupportWindow
}

// supported reports whether shape s anchored at (z, y, x) rests on filled.
// Bricks on the bottom layer are always supported.
func (sp SupportPolicy) supported(filled *voxel.Grid, s Shape, z, y, x int) bool {
	if z == 0 {
		return true
	}
	y0, y1 := y, y+s.DY-1
	x0, x1 := x, x+s.DX-1
	if sp == SupportWindow {
		y0, x0 = y-s.DY+1, x-s.DX+1
	}
	// At reports false outside the grid, so the window never wraps.
	for j := y0; j <= y1; j++ {
		for i := x0; i <= x1; i++ {
			if filled.At(z-1, j, i) {
				return true
			}
		}
	}
	return false
}
