package brick

import (
	"slices"

	"github.com/taigrr/bricklayer/pkg/errors"
)

// Entry pairs a shape with its display attribute (a colour name).
type Entry struct {
	Shape     Shape
	Attribute string
}

// Catalog is an ordered set of shapes closed under the dy/dx swap.
// It is immutable once built by Expand.
type Catalog struct {
	entries []Entry
	index   map[Shape]int
}

// Expand adds the dy/dx rotation of every base shape. Shapes that coincide
// after rotation collapse into one entry at the first position, keeping the
// last attribute seen. Expanding an expanded catalog yields the same catalog.
func Expand(base []Entry) (Catalog, error) {
	c := Catalog{index: make(map[Shape]int, 2*len(base))}
	for _, e := range base {
		if !e.Shape.Valid() {
			return Catalog{}, errors.New(errors.ErrCodeInvalidCatalogShape, "brick shape %v has a non-positive extent", e.Shape.Array())
		}
		c.put(Entry{Shape: e.Shape, Attribute: e.Attribute})
		c.put(Entry{Shape: e.Shape.Rotated(), Attribute: e.Attribute})
	}
	return c, nil
}

func (c *Catalog) put(e Entry) {
	if i, ok := c.index[e.Shape]; ok {
		c.entries[i].Attribute = e.Attribute
		return
	}
	c.index[e.Shape] = len(c.entries)
	c.entries = append(c.entries, e)
}

// Entries returns a copy of the entries in insertion order.
func (c Catalog) Entries() []Entry { return slices.Clone(c.entries) }

// Len returns the number of distinct shapes.
func (c Catalog) Len() int { return len(c.entries) }

// Attribute returns the display attribute for a shape.
func (c Catalog) Attribute(s Shape) (string, bool) {
	i, ok := c.index[s]
	if !ok {
		return "", false
	}
	return c.entries[i].Attribute, true
}

// Has reports whether the shape is in the catalog.
func (c Catalog) Has(s Shape) bool {
	_, ok := c.index[s]
	return ok
}

// Equal reports whether both catalogs hold the same entries in the same order.
func (c Catalog) Equal(o Catalog) bool {
	return slices.Equal(c.entries, o.entries)
}

// BySize returns the entries in packing order: descending volume, equal
// volumes ordered by ascending (dz, dy, dx).
func (c Catalog) BySize() []Entry {
	out := c.Entries()
	slices.SortStableFunc(out, func(a, b Entry) int { return compareShapes(a.Shape, b.Shape) })
	return out
}

// DefaultBase is the reference brick set.
func DefaultBase() []Entry {
	return []Entry{
		{Shape{1, 1, 1}, "red"},
		{Shape{1, 1, 2}, "blue"},
		{Shape{1, 2, 2}, "green"},
		{Shape{1, 2, 3}, "orange"},
		{Shape{1, 2, 4}, "purple"},
		{Shape{1, 4, 6}, "grey"},
		{Shape{1, 1, 3}, "turquoise"},
	}
}

// BasicBase is the minimal three-brick set.
func BasicBase() []Entry {
	return []Entry{
		{Shape{1, 1, 1}, "red"},
		{Shape{1, 1, 2}, "blue"},
		{Shape{1, 2, 2}, "green"},
	}
}

// DefaultCatalog expands DefaultBase.
func DefaultCatalog() Catalog {
	c, _ := Expand(DefaultBase())
	return c
}

// BasicCatalog expands BasicBase.
func BasicCatalog() Catalog {
	c, _ := Expand(BasicBase())
	return c
}
