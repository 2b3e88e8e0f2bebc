package brick

import (
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Verify replays placements in order against an empty grid and checks that
// each one stays in bounds, covers only solid cells, overlaps nothing placed
// before it and is supported under policy at the moment it lands.
func Verify(occupancy *voxel.Grid, placements []Placement, policy SupportPolicy) error {
	if occupancy == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "nil occupancy grid")
	}
	if policy == "" {
		policy = SupportFootprint
	}
	if !policy.valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown support policy %q", policy)
	}

	filled := voxel.NewGridLike(occupancy)
	for i, p := range placements {
		if !p.Shape.Valid() {
			return errors.New(errors.ErrCodeInvalidCatalogShape, "placement %d: shape %v", i, p.Shape.Array())
		}
		z, y, x := p.Origin[0], p.Origin[1], p.Origin[2]
		if z < 0 || y < 0 || x < 0 {
			return errors.New(errors.ErrCodeInvalidParameter, "placement %d: origin %v out of bounds", i, p.Origin)
		}
		if !fits(occupancy, filled, p.Shape, z, y, x) {
			return errors.New(errors.ErrCodeInvalidParameter, "placement %d: %s at %v leaves the solid region or overlaps", i, p.Shape, p.Origin)
		}
		if !policy.supported(filled, p.Shape, z, y, x) {
			return errors.New(errors.ErrCodeInvalidParameter, "placement %d: %s at %v is unsupported", i, p.Shape, p.Origin)
		}
		p.Cells(func(cz, cy, cx int) { filled.Set(cz, cy, cx, true) })
	}
	return nil
}
