// Package export writes and reads packing results as JSON.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/errors"
)

//go:embed placements.schema.json
var placementsSchema string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("placements.schema.json", placementsSchema)
	})
	return schema, schemaErr
}

// record is the wire form of one placement.
type record struct {
	Shape    [3]int `json:"shape"`
	Position [3]int `json:"position"`
	Color    string `json:"color,omitempty"`
}

// Validate checks raw JSON against the placements schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "placements are not JSON")
	}
	if err := s.Validate(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "placements do not match schema")
	}
	return nil
}

// MarshalPlacements encodes placements in order and validates the result.
func MarshalPlacements(placements []brick.Placement) ([]byte, error) {
	recs := make([]record, len(placements))
	for i, p := range placements {
		recs[i] = record{Shape: p.Shape.Array(), Position: p.Origin, Color: p.Attribute}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// WritePlacements writes the JSON placement list to w.
func WritePlacements(w io.Writer, placements []brick.Placement) error {
	data, err := MarshalPlacements(placements)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write placements")
	}
	return nil
}

// SavePlacements writes the JSON placement list to path.
func SavePlacements(path string, placements []brick.Placement) error {
	var buf bytes.Buffer
	if err := WritePlacements(&buf, placements); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save placements")
	}
	return nil
}

// ReadPlacements parses a placement list written by WritePlacements.
func ReadPlacements(r io.Reader) ([]brick.Placement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read placements")
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode placements")
	}
	out := make([]brick.Placement, len(recs))
	for i, r := range recs {
		out[i] = brick.Placement{
			Shape:     brick.Shape{DZ: r.Shape[0], DY: r.Shape[1], DX: r.Shape[2]},
			Origin:    r.Position,
			Attribute: r.Color,
		}
	}
	return out, nil
}

// LoadPlacements reads a placement list from path.
func LoadPlacements(path string) ([]brick.Placement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open placements")
	}
	defer f.Close()
	return ReadPlacements(f)
}
