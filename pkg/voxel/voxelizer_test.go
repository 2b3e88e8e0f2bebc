package voxel

import (
	"testing"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/run"
)

func twoBlocks() *models.Mesh {
	m := models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(4, 4, 4))
	m.Merge(models.Cuboid(math3d.V3(6, 0, 0), math3d.V3(10, 4, 4)))
	return m
}

func TestLattice(t *testing.T) {
	bounds := math3d.AABB{Min: math3d.V3(0, 0, 0), Max: math3d.V3(10, 4, 5)}
	lat := NewLattice(bounds, math3d.V3(3, 2, 2))

	if lat.Dims != [3]int{4, 2, 3} {
		t.Fatalf("Dims = %v, want [4 2 3]", lat.Dims)
	}
	if !lat.Offset.ApproxEqual(math3d.V3(1, 0, 0.5), 1e-9) {
		t.Errorf("Offset = %v, want (1,0,0.5)", lat.Offset)
	}
	if c := lat.Center(0, 0, 0); !c.ApproxEqual(math3d.V3(2.5, 1, 1.5), 1e-9) {
		t.Errorf("Center(0,0,0) = %v, want (2.5,1,1.5)", c)
	}
	if lat.Cells() != 24 {
		t.Errorf("Cells = %d, want 24", lat.Cells())
	}
}

func TestVoxelizeSeparatedBlocks(t *testing.T) {
	for _, kind := range IndexKinds {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Pitch = math3d.Splat(2)
			cfg.Index = kind

			g, err := Voxelize(nil, twoBlocks(), cfg)
			if err != nil {
				t.Fatal(err)
			}
			if g.Dims() != [3]int{5, 2, 2} {
				t.Fatalf("Dims = %v, want [5 2 2]", g.Dims())
			}
			if g.Count() != 16 {
				t.Errorf("solid = %d, want 16", g.Count())
			}
			for y := range 2 {
				for z := range 2 {
					if g.At(2, y, z) {
						t.Errorf("gap cell (2,%d,%d) classified solid", y, z)
					}
				}
			}
		})
	}
}

func TestVoxelizeOffsetShiftsGrid(t *testing.T) {
	// extent 10, pitch 3: four cells with centres at 2.5, 5.5, 8.5, 11.5,
	// the last of which lies outside the cube on every axis.
	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(3)
	g, err := Voxelize(nil, models.Cuboid(math3d.Vec3{}, math3d.Splat(10)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.Dims() != [3]int{4, 4, 4} {
		t.Fatalf("Dims = %v", g.Dims())
	}
	if g.Count() != 27 {
		t.Errorf("solid = %d, want 27", g.Count())
	}
	if g.At(3, 0, 0) || !g.At(2, 2, 2) {
		t.Error("unexpected classification at the shifted boundary")
	}
}

func tube(t *testing.T) *models.Mesh {
	t.Helper()
	m, err := models.Tube(6, 3, 1.5, 20)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestVoxelizeDeterministic(t *testing.T) {
	mesh := tube(t)
	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(0.75)
	cfg.Seed = 42

	a, err := Voxelize(nil, mesh, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Voxelize(nil, mesh, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("sequential voxelization is not reproducible")
	}
	if a.Count() == 0 || a.Count() == a.Len() {
		t.Errorf("solid = %d of %d, want a proper subset", a.Count(), a.Len())
	}
	// the bore is empty
	d := a.Dims()
	if a.At(d[0]/2, d[1]/2, d[2]/2) {
		t.Error("tube axis classified solid")
	}
}

func TestVoxelizeParallelIndependentOfWorkers(t *testing.T) {
	mesh := tube(t)
	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(0.75)
	cfg.Seed = 7

	var ref *Grid
	for _, workers := range []int{2, 3, 8} {
		cfg.Workers = workers
		g, err := Voxelize(nil, mesh, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if ref == nil {
			ref = g
			continue
		}
		if !ref.Equal(g) {
			t.Errorf("workers=%d differs from workers=2", workers)
		}
	}
}

func TestIndexesAgree(t *testing.T) {
	mesh := tube(t)
	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(1)
	cfg.Seed = 3

	var ref *Grid
	for _, kind := range IndexKinds {
		cfg.Index = kind
		g, err := Voxelize(nil, mesh, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if ref == nil {
			ref = g
			continue
		}
		if !ref.Equal(g) {
			t.Errorf("index %s classifies differently from %s", kind, IndexKinds[0])
		}
	}
}

func TestVoxelizeErrors(t *testing.T) {
	cube := models.Cuboid(math3d.Vec3{}, math3d.Splat(1))
	flat := models.Cuboid(math3d.Vec3{}, math3d.V3(1, 1, 0))

	tests := []struct {
		name   string
		mesh   *models.Mesh
		mutate func(*Config)
		code   errors.Code
	}{
		{"nil mesh", nil, nil, errors.ErrCodeDegenerateMesh},
		{"no triangles", models.NewMesh("empty"), nil, errors.ErrCodeDegenerateMesh},
		{"zero extent", flat, nil, errors.ErrCodeDegenerateMesh},
		{"zero rays", cube, func(c *Config) { c.Rays = 0 }, errors.ErrCodeInvalidParameter},
		{"negative pitch", cube, func(c *Config) { c.Pitch = math3d.V3(1, -1, 1) }, errors.ErrCodeInvalidParameter},
		{"unknown index", cube, func(c *Config) { c.Index = "octree" }, errors.ErrCodeInvalidParameter},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			if _, err := Voxelize(nil, tc.mesh, cfg); !errors.Is(err, tc.code) {
				t.Errorf("err = %v, want %s", err, tc.code)
			}
		})
	}
}

func TestVoxelizeReportsProgress(t *testing.T) {
	var last, calls int
	rc := run.New(func(stage run.Stage, done, total int) {
		if stage != run.StageVoxelize {
			t.Errorf("stage = %s", stage)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		last = done
		calls++
	}, nil)

	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(2)
	if _, err := Voxelize(rc, twoBlocks(), cfg); err != nil {
		t.Fatal(err)
	}
	if calls != 6 || last != 5 {
		t.Errorf("calls = %d, last = %d; want 6 and 5", calls, last)
	}
}

func BenchmarkVoxelizeBVH(b *testing.B) {
	mesh, err := models.Capsule(6, 2, 24)
	if err != nil {
		b.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Pitch = math3d.Splat(0.5)

	for b.Loop() {
		if _, err := Voxelize(nil, mesh, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
