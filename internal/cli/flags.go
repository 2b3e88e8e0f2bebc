package cli

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/pipeline"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// runFlags mirrors pipeline.Options on the command line. Only flags the
// user actually set override the config file.
type runFlags struct {
	pitch        []float64
	scale        float64
	height       float64
	heightAxis   int
	alignTallest bool
	rays         int
	seed         int64
	workers      int
	index        string
	permutation  []int
	traversal    string
	support      string
	catalog      string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	d := pipeline.DefaultOptions()
	fs := cmd.Flags()
	fs.Float64SliceVar(&f.pitch, "pitch", d.Pitch[:], "cell size x,y,z in mesh units after scaling")
	fs.Float64Var(&f.scale, "scale", d.Scale, "target scale applied to the mesh")
	fs.Float64Var(&f.height, "height", 0, "fit the mesh to this many bricks along the height axis (overrides --scale)")
	fs.IntVar(&f.heightAxis, "height-axis", d.HeightAxis, "mesh axis that points up (0=x, 1=y, 2=z)")
	fs.BoolVar(&f.alignTallest, "align-tallest", false, "rotate the mesh so its longest side points up")
	fs.IntVar(&f.rays, "rays", d.Rays, "rays cast per cell")
	fs.Int64Var(&f.seed, "seed", d.Seed, "ray direction seed")
	fs.IntVarP(&f.workers, "workers", "j", d.Workers, "parallel voxelization workers (1 = sequential reference stream)")
	fs.StringVar(&f.index, "index", d.Index, "ray index: "+joinKinds(voxel.IndexKinds))
	fs.IntSliceVar(&f.permutation, "permutation", d.Permutation[:], "axis order handed to the packer")
	fs.StringVar(&f.traversal, "traversal", d.Traversal, "packing order: "+joinKinds(brick.Traversals))
	fs.StringVar(&f.support, "support", d.Support, "support rule: "+joinKinds(brick.SupportPolicies))
	fs.StringVar(&f.catalog, "catalog", d.Catalog, "brick set: default, basic or a TOML/YAML file")
}

// options resolves the config file, then applies changed flags over it.
func (c *CLI) options(cmd *cobra.Command, f *runFlags) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if c.configPath != "" {
		var err error
		if opts, err = pipeline.LoadConfig(c.configPath); err != nil {
			return opts, err
		}
	}
	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fl := fs.Lookup(name); fl != nil && fl.Changed {
			apply()
		}
	}
	set("pitch", func() { copy(opts.Pitch[:], f.pitch) })
	set("scale", func() { opts.Scale = f.scale })
	set("height", func() { opts.HeightBricks = f.height })
	set("height-axis", func() { opts.HeightAxis = f.heightAxis })
	set("align-tallest", func() { opts.AlignTallest = f.alignTallest })
	set("rays", func() { opts.Rays = f.rays })
	set("seed", func() { opts.Seed = f.seed })
	set("workers", func() { opts.Workers = f.workers })
	set("index", func() { opts.Index = f.index })
	set("permutation", func() { copy(opts.Permutation[:], f.permutation) })
	set("traversal", func() { opts.Traversal = f.traversal })
	set("support", func() { opts.Support = f.support })
	set("catalog", func() { opts.Catalog = f.catalog })
	opts.NoCache = c.noCache

	if err := checkLen(fs, "pitch", len(f.pitch)); err != nil {
		return opts, err
	}
	if err := checkLen(fs, "permutation", len(f.permutation)); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func checkLen(fs *pflag.FlagSet, name string, n int) error {
	if fl := fs.Lookup(name); fl != nil && fl.Changed && n != 3 {
		return errors.New(errors.ErrCodeInvalidParameter, "--%s needs exactly 3 values, got %d", name, n)
	}
	return nil
}

func joinKinds[T ~string](kinds []T) string {
	return strings.Join(lo.Map(kinds, func(k T, _ int) string { return string(k) }), ", ")
}
