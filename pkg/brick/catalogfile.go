package brick

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/taigrr/bricklayer/pkg/errors"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk catalog layout, shared by TOML and YAML:
//
//	[[brick]]
//	shape = [1, 2, 4]
//	color = "purple"
type catalogFile struct {
	Bricks []catalogEntry `toml:"brick" yaml:"brick"`
}

type catalogEntry struct {
	Shape []int  `toml:"shape" yaml:"shape"`
	Color string `toml:"color" yaml:"color"`
}

// LoadCatalog reads a base catalog from a .toml, .yaml or .yml file and
// expands it.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, errors.Wrap(errors.ErrCodeIO, err, "read catalog")
	}
	return ParseCatalog(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// ParseCatalog decodes a base catalog in the given format ("toml" or
// "yaml") and expands it.
func ParseCatalog(data []byte, format string) (Catalog, error) {
	var f catalogFile
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return Catalog{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse toml catalog")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Catalog{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse yaml catalog")
		}
	default:
		return Catalog{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}

	if len(f.Bricks) == 0 {
		return Catalog{}, errors.New(errors.ErrCodeInvalidParameter, "catalog declares no bricks")
	}
	base := make([]Entry, len(f.Bricks))
	for i, b := range f.Bricks {
		if len(b.Shape) != 3 {
			return Catalog{}, errors.New(errors.ErrCodeInvalidCatalogShape, "brick %d: shape needs 3 extents, got %v", i, b.Shape)
		}
		base[i] = Entry{Shape: Shape{DZ: b.Shape[0], DY: b.Shape[1], DX: b.Shape[2]}, Attribute: b.Color}
	}
	return Expand(base)
}

// MarshalTOML encodes the catalog entries in the file layout.
func (c Catalog) MarshalTOML() ([]byte, error) {
	var f catalogFile
	for _, e := range c.entries {
		a := e.Shape.Array()
		f.Bricks = append(f.Bricks, catalogEntry{Shape: a[:], Color: e.Attribute})
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(f); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
