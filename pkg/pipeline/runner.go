package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/cache"
	"github.com/taigrr/bricklayer/pkg/ledger"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/run"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Runner executes conversions. Cache and Ledger are optional; the Runner
// keeps no per-run state, so one value may serve concurrent runs.
type Runner struct {
	Cache    cache.Cache
	Ledger   *ledger.DB
	Logger   *log.Logger
	Progress run.ProgressFunc
}

// NewRunner returns a Runner. A nil cache disables caching and a nil logger
// discards log output below warnings.
func NewRunner(c cache.Cache, l *ledger.DB, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NullCache{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Ledger: l, Logger: logger}
}

// Result is everything a finished conversion produced.
type Result struct {
	RunID string
	Mesh  *models.Mesh
	// Scale is the target scale actually applied.
	Scale float64
	// Occupancy is the voxelizer output, indexed (x, y, z).
	Occupancy *voxel.Grid
	// Remapped is Occupancy after Permutation; the packer's input.
	Remapped    *voxel.Grid
	Permutation voxel.Permutation
	Pack        *brick.Result
	Catalog     brick.Catalog
	CacheHit    bool
	Timings     map[run.Stage]time.Duration
}

// RunFile loads a mesh from path and converts it.
func (r *Runner) RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	mesh, err := models.Load(path)
	if err != nil {
		r.record(ctx, filepath.Base(path), opts, start, nil, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	r.Logger.Info("loaded mesh", "path", path, "triangles", mesh.TriangleCount(), "vertices", mesh.VertexCount())
	return r.Run(ctx, mesh, opts)
}

// Run converts mesh. The mesh is not modified. Cancellation is checked
// between stages; a cancelled run returns no partial result.
func (r *Runner) Run(ctx context.Context, mesh *models.Mesh, opts Options) (res *Result, err error) {
	start := time.Now()
	name := "mesh"
	if mesh != nil && mesh.Name != "" {
		name = mesh.Name
	}
	defer func() { r.record(ctx, name, opts, start, res, err) }()

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := voxel.CheckMesh(mesh); err != nil {
		return nil, err
	}
	catalog, err := opts.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	packer, err := opts.Packer(catalog)
	if err != nil {
		return nil, err
	}

	rc := run.New(r.Progress, r.Logger)
	res = &Result{
		Catalog:     catalog,
		Permutation: voxel.Permutation(opts.Permutation),
		Timings:     make(map[run.Stage]time.Duration),
	}

	// Stage 1: place the mesh on the lattice.
	t := time.Now()
	m := mesh.Clone()
	scale, err := opts.Place(m)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("placed mesh", "scale", scale, "size", m.Size())
	res.Mesh, res.Scale = m, scale
	res.Timings[run.StageLoad] = time.Since(t)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: voxelize, through the cache.
	t = time.Now()
	cfg := opts.VoxelConfig()
	key := cache.Key(m, cfg)
	if !opts.NoCache {
		g, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		if ok {
			res.Occupancy, res.CacheHit = g, true
			rc.Report(run.StageVoxelize, 1, 1)
		}
	}
	if res.Occupancy == nil {
		g, err := voxel.Voxelize(rc, m, cfg)
		if err != nil {
			return nil, fmt.Errorf("voxelize: %w", err)
		}
		res.Occupancy = g
		if !opts.NoCache {
			if err := r.Cache.Set(ctx, key, g); err != nil {
				r.Logger.Warn("cache write failed", "err", err)
			}
		}
	}
	res.Timings[run.StageVoxelize] = time.Since(t)
	r.Logger.Info("voxelized",
		"dims", res.Occupancy.Dims(),
		"solid", res.Occupancy.Count(),
		"cached", res.CacheHit,
		"duration", res.Timings[run.StageVoxelize])
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: reorder axes for the packer.
	t = time.Now()
	if res.Remapped, err = res.Occupancy.Permute(res.Permutation); err != nil {
		return nil, err
	}
	rc.Report(run.StageRemap, 1, 1)
	res.Timings[run.StageRemap] = time.Since(t)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: pack and check the result.
	t = time.Now()
	if res.Pack, err = packer.Pack(rc, res.Remapped); err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	if err := brick.Verify(res.Remapped, res.Pack.Placements, packer.Support); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	res.Timings[run.StagePack] = time.Since(t)
	r.Logger.Info("packed",
		"bricks", res.Pack.Stats.Bricks,
		"filled", res.Pack.Stats.Filled,
		"unfilled", res.Pack.Stats.Unfilled,
		"duration", res.Timings[run.StagePack])
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// record writes the run to the ledger when one is attached. Ledger
// failures are logged, never returned.
func (r *Runner) record(ctx context.Context, input string, opts Options, start time.Time, res *Result, runErr error) {
	if r.Ledger == nil {
		return
	}
	optsJSON, _ := json.Marshal(opts)
	row := ledger.Run{
		StartedAt: start,
		Duration:  time.Since(start),
		Input:     input,
		Options:   optsJSON,
		Axes:      opts.Permutation,
	}
	if runErr != nil {
		row.Err = runErr.Error()
	}
	if res != nil && runErr == nil && res.Pack != nil {
		row.Dims = res.Remapped.Dims()
		s := res.Pack.Stats
		row.Solid, row.Filled, row.Unfilled, row.Bricks = s.Solid, s.Filled, s.Unfilled, s.Bricks
	}
	// The run's own context may already be cancelled.
	id, err := r.Ledger.Record(context.WithoutCancel(ctx), row)
	if err != nil {
		r.Logger.Warn("ledger write failed", "err", err)
		return
	}
	if res != nil && runErr == nil {
		res.RunID = id
	}
}
