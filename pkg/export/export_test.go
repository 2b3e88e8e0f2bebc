package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/bricklayer/pkg/brick"
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

func samplePlacements() []brick.Placement {
	return []brick.Placement{
		{Shape: brick.Shape{DZ: 1, DY: 2, DX: 2}, Origin: [3]int{0, 0, 0}, Attribute: "green"},
		{Shape: brick.Shape{DZ: 1, DY: 1, DX: 2}, Origin: [3]int{1, 0, 0}, Attribute: "blue"},
		{Shape: brick.Shape{DZ: 1, DY: 1, DX: 1}, Origin: [3]int{1, 1, 0}},
	}
}

func TestPlacementsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlacements(&buf, samplePlacements()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"position": [`) {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}

	got, err := ReadPlacements(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := samplePlacements()
	if len(got) != len(want) {
		t.Fatalf("got %d placements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("placement %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSaveLoadPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bricks.json")
	if err := SavePlacements(path, samplePlacements()); err != nil {
		t.Fatal(err)
	}
	got, err := LoadPlacements(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("loaded %d placements", len(got))
	}
	if _, err := LoadPlacements(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestEmptyPlacements(t *testing.T) {
	data, err := MarshalPlacements(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("empty list = %s", data)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `[{`},
		{"object root", `{"shape":[1,1,1],"position":[0,0,0]}`},
		{"short shape", `[{"shape":[1,1],"position":[0,0,0]}]`},
		{"zero extent", `[{"shape":[1,0,1],"position":[0,0,0]}]`},
		{"negative position", `[{"shape":[1,1,1],"position":[0,-1,0]}]`},
		{"fractional", `[{"shape":[1,1,1.5],"position":[0,0,0]}]`},
		{"missing position", `[{"shape":[1,1,1]}]`},
		{"extra field", `[{"shape":[1,1,1],"position":[0,0,0],"rotation":90}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate([]byte(tt.doc)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
			if _, err := ReadPlacements(strings.NewReader(tt.doc)); err == nil {
				t.Error("ReadPlacements accepted invalid input")
			}
		})
	}
}

func TestPackedResultExports(t *testing.T) {
	occ := voxel.NewGrid(2, 3, 3)
	for i := range occ.Len() {
		z, y, x := occ.Coords(i)
		occ.Set(z, y, x, true)
	}
	res, err := brick.NewPacker(brick.DefaultCatalog()).Pack(nil, occ)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WritePlacements(&buf, res.Placements); err != nil {
		t.Fatal(err)
	}
	back, err := ReadPlacements(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := brick.Verify(occ, back, brick.SupportFootprint); err != nil {
		t.Errorf("exported placements no longer verify: %v", err)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := voxel.NewGrid(2, 3, 4)
	g.Set(0, 1, 2, true)
	g.Set(1, 2, 3, true)

	path := filepath.Join(t.TempDir(), "grid.json")
	if err := SaveGrid(path, g); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		t.Fatal(err)
	}
	back, err := ReadGrid(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(g) {
		t.Error("grid changed through JSON")
	}
	if _, err := ReadGrid(strings.NewReader(`[[[true],[true,false]]]`)); err == nil {
		t.Error("ragged grid accepted")
	}
}
