package brick

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/bricklayer/pkg/errors"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		base []Entry
		want []Entry
	}{
		{
			name: "square footprint collapses",
			base: []Entry{{Shape{1, 2, 2}, "green"}},
			want: []Entry{{Shape{1, 2, 2}, "green"}},
		},
		{
			name: "rotation follows base",
			base: []Entry{{Shape{1, 2, 4}, "purple"}},
			want: []Entry{{Shape{1, 2, 4}, "purple"}, {Shape{1, 4, 2}, "purple"}},
		},
		{
			name: "last attribute wins",
			base: []Entry{{Shape{1, 1, 2}, "blue"}, {Shape{1, 2, 1}, "red"}},
			want: []Entry{{Shape{1, 1, 2}, "red"}, {Shape{1, 2, 1}, "red"}},
		},
		{
			name: "empty",
			base: nil,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Expand(tt.base)
			if err != nil {
				t.Fatal(err)
			}
			got := c.Entries()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandIdempotent(t *testing.T) {
	for _, base := range [][]Entry{DefaultBase(), BasicBase(), {{Shape{1, 1, 2}, "a"}, {Shape{1, 2, 1}, "b"}}} {
		once, err := Expand(base)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Expand(once.Entries())
		if err != nil {
			t.Fatal(err)
		}
		if !once.Equal(twice) {
			t.Errorf("Expand not idempotent: %v vs %v", once.Entries(), twice.Entries())
		}
	}
}

func TestExpandInvalidShape(t *testing.T) {
	for _, s := range []Shape{{0, 1, 1}, {1, -1, 1}, {1, 1, 0}} {
		_, err := Expand([]Entry{{Shape{1, 1, 1}, "red"}, {s, "bad"}})
		if !errors.Is(err, errors.ErrCodeInvalidCatalogShape) {
			t.Errorf("Expand(%v) err = %v, want INVALID_CATALOG_SHAPE", s, err)
		}
	}
}

func TestCatalogs(t *testing.T) {
	if n := DefaultCatalog().Len(); n != 12 {
		t.Errorf("default catalog has %d shapes, want 12", n)
	}
	basic := BasicCatalog()
	if n := basic.Len(); n != 4 {
		t.Errorf("basic catalog has %d shapes, want 4", n)
	}
	if a, ok := basic.Attribute(Shape{1, 2, 1}); !ok || a != "blue" {
		t.Errorf("rotated 1x1x2 attribute = %q, %v", a, ok)
	}
	if basic.Has(Shape{2, 1, 1}) {
		t.Error("height is never swapped")
	}
}

func TestBySize(t *testing.T) {
	got := BasicCatalog().BySize()
	want := []Shape{{1, 2, 2}, {1, 1, 2}, {1, 2, 1}, {1, 1, 1}}
	for i, e := range got {
		if e.Shape != want[i] {
			t.Errorf("position %d = %v, want %v", i, e.Shape, want[i])
		}
	}

	mixed, _ := Expand([]Entry{{Shape{2, 1, 1}, "tall"}, {Shape{1, 1, 2}, "flat"}})
	if first := mixed.BySize()[0].Shape; first != (Shape{1, 1, 2}) {
		t.Errorf("equal volumes must order by ascending dz first, got %v", first)
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"bricks.toml": `
[[brick]]
shape = [1, 2, 4]
color = "purple"

[[brick]]
shape = [1, 1, 1]
color = "red"
`,
		"bricks.yaml": `
brick:
  - shape: [1, 2, 4]
    color: purple
  - shape: [1, 1, 1]
    color: red
`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			c, err := LoadCatalog(path)
			if err != nil {
				t.Fatal(err)
			}
			if c.Len() != 3 {
				t.Errorf("Len = %d, want 3", c.Len())
			}
			if a, _ := c.Attribute(Shape{1, 4, 2}); a != "purple" {
				t.Errorf("rotated attribute = %q", a)
			}
		})
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		code   errors.Code
	}{
		{"short shape", "[[brick]]\nshape = [1, 2]\n", "toml", errors.ErrCodeInvalidCatalogShape},
		{"zero extent", "[[brick]]\nshape = [1, 0, 2]\n", "toml", errors.ErrCodeInvalidCatalogShape},
		{"no bricks", "", "toml", errors.ErrCodeInvalidParameter},
		{"bad syntax", "[[brick]\n", "toml", errors.ErrCodeInvalidFormat},
		{"unknown format", "{}", "json", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestMarshalTOMLRoundTrip(t *testing.T) {
	c := DefaultCatalog()
	data, err := c.MarshalTOML()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseCatalog(data, "toml")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equal(back) {
		t.Error("catalog changed through TOML")
	}
}
