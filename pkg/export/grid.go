package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// WriteGrid writes g as nested JSON arrays of booleans, outermost axis first.
func WriteGrid(w io.Writer, g *voxel.Grid) error {
	if err := json.NewEncoder(w).Encode(g.Nested()); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write grid")
	}
	return nil
}

// SaveGrid writes g as nested JSON arrays to path.
func SaveGrid(path string, g *voxel.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create grid file")
	}
	if err := WriteGrid(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close grid file")
	}
	return nil
}

// ReadGrid parses nested JSON arrays written by WriteGrid.
func ReadGrid(r io.Reader) (*voxel.Grid, error) {
	var nested [][][]bool
	if err := json.NewDecoder(r).Decode(&nested); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode grid")
	}
	return voxel.FromNested(nested)
}
