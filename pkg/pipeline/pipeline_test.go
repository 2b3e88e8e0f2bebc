package pipeline

import (
	"context"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/taigrr/bricklayer/pkg/cache"
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/ledger"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/run"
)

func quietLogger() *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.ErrorLevel)
	return l
}

func unitOptions() Options {
	opts := DefaultOptions()
	opts.Pitch = [3]float64{1, 1, 1}
	opts.Catalog = CatalogBasic
	return opts
}

func slab() *models.Mesh {
	m := models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(4, 4, 2))
	m.Name = "slab"
	return m
}

func TestRunSlab(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Run(context.Background(), slab(), unitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if d := res.Occupancy.Dims(); d != [3]int{4, 4, 2} {
		t.Errorf("occupancy dims = %v", d)
	}
	if d := res.Remapped.Dims(); d != [3]int{2, 4, 4} {
		t.Errorf("remapped dims = %v", d)
	}
	s := res.Pack.Stats
	if s.Solid != 32 || s.Unfilled != 0 || s.Bricks != 8 {
		t.Errorf("stats = %+v", s)
	}
	for _, p := range res.Pack.Placements {
		if p.Attribute != "green" {
			t.Errorf("placement %v is not a 2x2 slab", p)
		}
	}
}

func TestRunDoesNotModifyMesh(t *testing.T) {
	m := slab()
	before := m.Clone()
	opts := unitOptions()
	opts.Scale = 0.5
	if _, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), m, opts); err != nil {
		t.Fatal(err)
	}
	for i := range m.Vertices {
		if m.Vertices[i] != before.Vertices[i] {
			t.Fatal("input mesh was rescaled in place")
		}
	}
}

func TestRunHeightBricks(t *testing.T) {
	opts := unitOptions()
	opts.HeightBricks = 4
	m := models.Cuboid(math3d.V3(0, 0, 3), math3d.V3(1, 1, 5))
	res, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scale != 2 {
		t.Errorf("scale = %v, want 2", res.Scale)
	}
	if d := res.Remapped.Dims(); d != [3]int{4, 2, 2} {
		t.Errorf("remapped dims = %v", d)
	}
}

func TestRunHeightBricksTriangleSoup(t *testing.T) {
	src := models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(4, 4, 2))
	m := models.NewMesh("built")
	for i := range src.Faces {
		m.AddTriangle(src.Triangle(i))
	}
	opts := unitOptions()
	opts.HeightBricks = 2
	res, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scale != 1 || res.Pack.Stats.Bricks != 8 {
		t.Errorf("scale = %v, bricks = %d, want 1 and 8", res.Scale, res.Pack.Stats.Bricks)
	}
}

func TestOptionsPlace(t *testing.T) {
	tests := []struct {
		name      string
		min, max  math3d.Vec3
		mutate    func(*Options)
		wantScale float64
		wantSize  math3d.Vec3
	}{
		{"scale", math3d.V3(0, 0, 1), math3d.V3(2, 2, 5),
			func(o *Options) { o.Scale = 0.5 }, 0.5, math3d.V3(1, 1, 2)},
		{"height bricks", math3d.V3(0, 0, 1), math3d.V3(2, 2, 5),
			func(o *Options) { o.HeightBricks = 8 }, 2, math3d.V3(4, 4, 8)},
		{"align then height", math3d.V3(0, 0, 0), math3d.V3(4, 2, 1),
			func(o *Options) { o.AlignTallest = true; o.HeightBricks = 4 }, 1, math3d.V3(1, 2, 4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := unitOptions()
			tc.mutate(&opts)
			m := models.Cuboid(tc.min, tc.max)
			scale, err := opts.Place(m)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(scale-tc.wantScale) > 1e-9 {
				t.Errorf("scale = %v, want %v", scale, tc.wantScale)
			}
			if !m.Size().ApproxEqual(tc.wantSize, 1e-9) {
				t.Errorf("size = %v, want %v", m.Size(), tc.wantSize)
			}
			if math.Abs(m.BoundsMin.Z) > 1e-9 {
				t.Errorf("min z = %v, want 0", m.BoundsMin.Z)
			}
		})
	}
}

func TestRunAlignTallest(t *testing.T) {
	opts := unitOptions()
	opts.AlignTallest = true
	m := models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(6, 2, 2))
	res, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), m, opts)
	if err != nil {
		t.Fatal(err)
	}
	// Rotation leaves rounding noise, so extents may round up by one cell.
	if d := res.Remapped.Dims(); d[0] < 6 || d[1] > 3 || d[2] > 3 {
		t.Errorf("remapped dims = %v, want the long side vertical", d)
	}
}

func TestRunCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	ctx := context.Background()

	first, err := r.Run(ctx, slab(), unitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("cold cache reported a hit")
	}
	second, err := r.Run(ctx, slab(), unitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("warm cache missed")
	}
	if !first.Occupancy.Equal(second.Occupancy) {
		t.Error("cached grid differs from computed grid")
	}

	opts := unitOptions()
	opts.NoCache = true
	third, err := r.Run(ctx, slab(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("NoCache run used the cache")
	}
}

func TestRunLedger(t *testing.T) {
	db, err := ledger.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	r := NewRunner(nil, db, quietLogger())
	ctx := context.Background()

	res, err := r.Run(ctx, slab(), unitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" {
		t.Error("run id not set")
	}
	flat := models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(1, 1, 0))
	if _, err := r.Run(ctx, flat, unitOptions()); err == nil {
		t.Fatal("flat mesh accepted")
	}

	runs, err := db.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("ledger has %d runs", len(runs))
	}
	got, err := db.Get(ctx, res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bricks != 8 || got.Input != "slab" || got.Dims != [3]int{2, 4, 4} || got.Axes != [3]int{2, 1, 0} {
		t.Errorf("ledger row = %+v", got)
	}

	opts := unitOptions()
	opts.Permutation = [3]int{0, 1, 2}
	res, err = r.Run(ctx, slab(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got, err = db.Get(ctx, res.RunID); err != nil {
		t.Fatal(err)
	}
	if got.Dims != [3]int{4, 4, 2} || got.Axes != [3]int{0, 1, 2} {
		t.Errorf("identity run recorded dims %v axes %v", got.Dims, got.Axes)
	}
}

func TestRunProgress(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	seen := map[run.Stage]bool{}
	r.Progress = func(stage run.Stage, done, total int) {
		if done == total {
			seen[stage] = true
		}
	}
	if _, err := r.Run(context.Background(), slab(), unitOptions()); err != nil {
		t.Fatal(err)
	}
	for _, s := range []run.Stage{run.StageVoxelize, run.StageRemap, run.StagePack} {
		if !seen[s] {
			t.Errorf("stage %s never completed", s)
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mesh   *models.Mesh
		mutate func(*Options)
		code   errors.Code
	}{
		{"flat mesh", models.Cuboid(math3d.V3(0, 0, 0), math3d.V3(1, 1, 0)), nil, errors.ErrCodeDegenerateMesh},
		{"nil mesh", nil, nil, errors.ErrCodeDegenerateMesh},
		{"bad permutation", slab(), func(o *Options) { o.Permutation = [3]int{0, 0, 1} }, errors.ErrCodeInvalidAxis},
		{"bad height axis", slab(), func(o *Options) { o.HeightAxis = 3 }, errors.ErrCodeInvalidAxis},
		{"zero rays", slab(), func(o *Options) { o.Rays = 0 }, errors.ErrCodeInvalidParameter},
		{"zero scale", slab(), func(o *Options) { o.Scale = 0 }, errors.ErrCodeInvalidParameter},
		{"bad traversal", slab(), func(o *Options) { o.Traversal = "spiral" }, errors.ErrCodeInvalidParameter},
		{"missing catalog", slab(), func(o *Options) { o.Catalog = "/nonexistent/bricks.toml" }, errors.ErrCodeIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := unitOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			_, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), tt.mesh, opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewRunner(nil, nil, quietLogger()).Run(ctx, slab(), unitOptions())
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("cancelled run returned a result")
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slab.stl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := models.WriteSTL(f, slab()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	res, err := NewRunner(nil, nil, quietLogger()).RunFile(context.Background(), path, unitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Pack.Stats.Bricks != 8 {
		t.Errorf("bricks = %d", res.Pack.Stats.Bricks)
	}
	if _, err := NewRunner(nil, nil, quietLogger()).RunFile(context.Background(), path+".missing", unitOptions()); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"run.toml": "rays = 5\nseed = 42\npitch = [1.0, 1.0, 1.2]\ntraversal = \"centered\"\n",
		"run.yaml": "rays: 5\nseed: 42\npitch: [1.0, 1.0, 1.2]\ntraversal: centered\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			opts, err := LoadConfig(path)
			if err != nil {
				t.Fatal(err)
			}
			if opts.Rays != 5 || opts.Seed != 42 || opts.Pitch[2] != 1.2 || opts.Traversal != "centered" {
				t.Errorf("opts = %+v", opts)
			}
			if opts.Catalog != CatalogDefault || opts.Permutation != [3]int{2, 1, 0} {
				t.Errorf("defaults lost: %+v", opts)
			}
		})
	}

	bad := filepath.Join(dir, "run.toml.bak")
	if err := os.WriteFile(bad, []byte("rays = 5"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown extension err = %v", err)
	}

	invalid := filepath.Join(dir, "invalid.toml")
	if err := os.WriteFile(invalid, []byte("rays = 0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalid); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("invalid config err = %v", err)
	}
}
