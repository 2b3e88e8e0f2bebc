package voxel

import (
	"math/rand/v2"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/run"
	"golang.org/x/sync/errgroup"
)

// DefaultPitch is the cell size of a standard brick: 7.8 mm square
// footprint, 9.6 mm tall.
var DefaultPitch = math3d.V3(7.8, 7.8, 9.6)

// Config parameterises a voxelization run.
type Config struct {
	Pitch math3d.Vec3
	// Rays cast per cell; a cell is solid only if every ray has odd parity.
	Rays int
	Seed int64
	// Workers <= 1 selects the sequential reference stream. Larger values
	// classify x-slabs concurrently with per-cell random streams, which
	// gives identical output for every worker count but not the same
	// output as the sequential stream.
	Workers int
	Index   IndexKind
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		Pitch:   DefaultPitch,
		Rays:    3,
		Seed:    0,
		Workers: 1,
		Index:   IndexBVH,
	}
}

// Validate checks the parameters without looking at a mesh.
func (c Config) Validate() error {
	if !c.Pitch.AllPositive() {
		return errors.New(errors.ErrCodeInvalidParameter, "pitch %v must be positive on every axis", c.Pitch)
	}
	if c.Rays < 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "rays per voxel must be at least 1, got %d", c.Rays)
	}
	if c.Index != "" {
		if _, err := ParseIndexKind(string(c.Index)); err != nil {
			return err
		}
	}
	return nil
}

// CheckMesh fails with DegenerateMesh for meshes with no triangles or no
// extent along some axis.
func CheckMesh(mesh *models.Mesh) error {
	if mesh == nil || mesh.TriangleCount() == 0 {
		return errors.New(errors.ErrCodeDegenerateMesh, "mesh has no triangles")
	}
	if err := mesh.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeDegenerateMesh, err, "mesh %q", mesh.Name)
	}
	size := math3d.BoundPoints(mesh.Vertices...).Size()
	if !size.AllPositive() {
		return errors.New(errors.ErrCodeDegenerateMesh, "mesh %q has zero extent: %v", mesh.Name, size)
	}
	return nil
}

// Voxelize classifies every lattice cell of the mesh bounds as solid or
// empty by stochastic parity ray casting. The result is indexed (x, y, z).
//
// Cells are visited x outer, y middle, z inner. Bounds are taken from the
// vertices directly, so stale cached bounds on the mesh cannot skew the grid.
func Voxelize(rc *run.Context, mesh *models.Mesh, cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckMesh(mesh); err != nil {
		return nil, err
	}

	lat := NewLattice(math3d.BoundPoints(mesh.Vertices...), cfg.Pitch)
	idx, err := NewIndex(cfg.Index, mesh)
	if err != nil {
		return nil, err
	}
	rc.Debugf("voxelizing %d triangles into %v cells, %d rays, index %s", mesh.TriangleCount(), lat.Dims, cfg.Rays, cfg.Index)

	c := &classifier{lat: lat, index: idx, rays: cfg.Rays, grid: NewGrid(lat.Dims[0], lat.Dims[1], lat.Dims[2])}
	progress := rc.Counter(run.StageVoxelize, lat.Dims[0])

	if cfg.Workers <= 1 {
		rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0))
		for x := range lat.Dims[0] {
			c.slab(x, func(int) *rand.Rand { return rng })
			progress.Add(1)
		}
		return c.grid, nil
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for x := range lat.Dims[0] {
		g.Go(func() error {
			src := rand.NewPCG(0, 0)
			rng := rand.New(src)
			c.slab(x, func(cell int) *rand.Rand {
				src.Seed(cellSeed(cfg.Seed, cell))
				return rng
			})
			progress.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c.grid, nil
}

type classifier struct {
	lat   Lattice
	index Index
	rays  int
	grid  *Grid
}

// slab classifies every cell with the given x index. streamFor returns
// the random source for a cell given its flat index.
func (c *classifier) slab(x int, streamFor func(cell int) *rand.Rand) {
	for y := range c.lat.Dims[1] {
		for z := range c.lat.Dims[2] {
			cell := c.grid.Index(x, y, z)
			if c.solid(c.lat.Center(x, y, z), streamFor(cell)) {
				c.grid.cells[cell] = true
			}
		}
	}
}

// solid casts up to c.rays rays and stops at the first even crossing count.
func (c *classifier) solid(center math3d.Vec3, rng *rand.Rand) bool {
	for range c.rays {
		r := math3d.NewRay(center, sampleDirection(rng))
		if c.index.Intersections(r)%2 == 0 {
			return false
		}
	}
	return true
}
