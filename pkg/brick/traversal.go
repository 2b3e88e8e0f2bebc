package brick

import (
	"strings"

	"github.com/taigrr/bricklayer/pkg/errors"
)

// Traversal selects the order in which the packer visits cells.
type Traversal string

const (
	// Lexicographic visits z, then y, then x, each ascending.
	Lexicographic Traversal = "lexicographic"
	// Centered keeps z ascending but starts y and x at the middle of the
	// layer and wraps around to 0, so packing grows from the centre line.
	Centered Traversal = "centered"
)

// Traversals lists the accepted traversal names.
var Traversals = []Traversal{Lexicographic, Centered}

// ParseTraversal maps a flag value to a Traversal. The empty string selects
// Lexicographic.
func ParseTraversal(s string) (Traversal, error) {
	switch Traversal(strings.ToLower(s)) {
	case "", Lexicographic:
		return Lexicographic, nil
	case Centered:
		return Centered, nil
	}
	return "", errors.New(errors.ErrCodeInvalidParameter, "unknown traversal %q", s)
}

// axisOrder returns the visiting sequence for one axis of length n.
func (t Traversal) axisOrder(n int) []int {
	out := make([]int, 0, n)
	start := 0
	if t == Centered {
		start = n / 2
	}
	for i := range n {
		out = append(out, (start+i)%n)
	}
	return out
}

// visit enumerates every (z, y, x) of dims exactly once. layer, if set, is
// called after each z slice.
func (t Traversal) visit(dims [3]int, fn func(z, y, x int), layer func(z int)) {
	ys := t.axisOrder(dims[1])
	xs := t.axisOrder(dims[2])
	for z := range dims[0] {
		for _, y := range ys {
			for _, x := range xs {
				fn(z, y, x)
			}
		}
		if layer != nil {
			layer(z)
		}
	}
}
