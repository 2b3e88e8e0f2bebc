// Package pipeline runs the full mesh-to-bricks conversion: load, rescale,
// voxelize, remap, pack and verify.
package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Catalog names accepted by Options.Catalog besides a file path.
const (
	CatalogDefault = "default"
	CatalogBasic   = "basic"
)

// Options configures one conversion. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	Pitch [3]float64 `toml:"pitch" yaml:"pitch" json:"pitch"`
	// Scale multiplies mesh units before voxelization. Ignored when
	// HeightBricks is set.
	Scale float64 `toml:"scale" yaml:"scale" json:"scale"`
	// HeightBricks fits the mesh to this many cells along HeightAxis.
	HeightBricks float64 `toml:"height_bricks" yaml:"height_bricks" json:"height_bricks,omitempty"`
	HeightAxis   int     `toml:"height_axis" yaml:"height_axis" json:"height_axis"`
	// AlignTallest turns the mesh so its longest side lies along HeightAxis.
	AlignTallest bool `toml:"align_tallest" yaml:"align_tallest" json:"align_tallest,omitempty"`

	Rays    int    `toml:"rays" yaml:"rays" json:"rays"`
	Seed    int64  `toml:"seed" yaml:"seed" json:"seed"`
	Workers int    `toml:"workers" yaml:"workers" json:"workers"`
	Index   string `toml:"index" yaml:"index" json:"index"`

	Permutation [3]int `toml:"permutation" yaml:"permutation" json:"permutation"`
	Traversal   string `toml:"traversal" yaml:"traversal" json:"traversal"`
	Support     string `toml:"support" yaml:"support" json:"support"`
	// Catalog is "default", "basic" or a path to a TOML/YAML catalog file.
	Catalog string `toml:"catalog" yaml:"catalog" json:"catalog"`

	NoCache bool `toml:"no_cache" yaml:"no_cache" json:"-"`
}

// DefaultOptions returns the reference run parameters.
func DefaultOptions() Options {
	return Options{
		Pitch:       voxel.DefaultPitch.Array(),
		Scale:       1,
		HeightAxis:  models.AxisZ,
		Rays:        3,
		Seed:        0,
		Workers:     1,
		Index:       string(voxel.IndexBVH),
		Permutation: [3]int(voxel.HeightFirst),
		Traversal:   string(brick.Lexicographic),
		Support:     string(brick.SupportFootprint),
		Catalog:     CatalogDefault,
	}
}

// LoadConfig reads a TOML or YAML file over DefaultOptions. Keys absent
// from the file keep their defaults.
func LoadConfig(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeIO, err, "read config")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
		}
	default:
		return opts, errors.New(errors.ErrCodeInvalidFormat, "unsupported config extension %q", ext)
	}
	return opts, opts.Validate()
}

// Validate checks every parameter without touching a mesh. Catalog files
// are not opened here.
func (o Options) Validate() error {
	if err := o.VoxelConfig().Validate(); err != nil {
		return err
	}
	if o.HeightAxis < 0 || o.HeightAxis > 2 {
		return errors.New(errors.ErrCodeInvalidAxis, "height axis %d is not one of 0, 1, 2", o.HeightAxis)
	}
	if o.HeightBricks < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "height %v must be positive", o.HeightBricks)
	}
	if o.HeightBricks == 0 && !(o.Scale > 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "scale %v must be positive", o.Scale)
	}
	if err := voxel.Permutation(o.Permutation).Validate(); err != nil {
		return err
	}
	if _, err := brick.ParseTraversal(o.Traversal); err != nil {
		return err
	}
	if _, err := brick.ParseSupport(o.Support); err != nil {
		return err
	}
	return nil
}

// Place puts m on the lattice in place: it optionally turns the tallest
// side up, resolves the target scale (from HeightBricks when set) and
// rescales. It returns the scale applied.
func (o Options) Place(m *models.Mesh) (float64, error) {
	if o.AlignTallest {
		if _, err := m.AlignTallestAxis(o.HeightAxis); err != nil {
			return 0, err
		}
	}
	scale := o.Scale
	if o.HeightBricks > 0 {
		var err error
		if scale, err = models.ScaleForHeight(m, o.HeightAxis, o.HeightBricks); err != nil {
			return 0, err
		}
	}
	if err := m.Rescale(math3d.FromArray(o.Pitch), scale, o.HeightAxis); err != nil {
		return 0, err
	}
	return scale, nil
}

// VoxelConfig returns the voxelizer parameters.
func (o Options) VoxelConfig() voxel.Config {
	return voxel.Config{
		Pitch:   math3d.FromArray(o.Pitch),
		Rays:    o.Rays,
		Seed:    o.Seed,
		Workers: o.Workers,
		Index:   voxel.IndexKind(o.Index),
	}
}

// LoadCatalog resolves Options.Catalog.
func (o Options) LoadCatalog() (brick.Catalog, error) {
	switch o.Catalog {
	case "", CatalogDefault:
		return brick.DefaultCatalog(), nil
	case CatalogBasic:
		return brick.BasicCatalog(), nil
	}
	return brick.LoadCatalog(o.Catalog)
}

// Packer builds a packer for the options with the given catalog.
func (o Options) Packer(c brick.Catalog) (*brick.Packer, error) {
	order, err := brick.ParseTraversal(o.Traversal)
	if err != nil {
		return nil, err
	}
	support, err := brick.ParseSupport(o.Support)
	if err != nil {
		return nil, err
	}
	return &brick.Packer{Catalog: c, Order: order, Support: support}, nil
}
