package voxel

import (
	"github.com/taigrr/bricklayer/pkg/errors"
)

// Permutation reorders grid axes: output axis i is input axis p[i].
type Permutation [3]int

// Reference orders.
var (
	// IdentityPermutation keeps (x, y, z).
	IdentityPermutation = Permutation{0, 1, 2}
	// HeightFirst turns an (x, y, z) grid into the (z, y, x) layout the
	// packer walks layer by layer.
	HeightFirst = Permutation{2, 1, 0}
)

// NewPermutation validates that (a, b, c) is a bijection over {0, 1, 2}.
func NewPermutation(a, b, c int) (Permutation, error) {
	p := Permutation{a, b, c}
	return p, p.Validate()
}

// Validate fails with InvalidAxis unless p is a bijection over {0, 1, 2}.
func (p Permutation) Validate() error {
	var seen [3]bool
	for _, axis := range p {
		if axis < 0 || axis > 2 {
			return errors.New(errors.ErrCodeInvalidAxis, "permutation %v: axis %d outside {0,1,2}", p, axis)
		}
		if seen[axis] {
			return errors.New(errors.ErrCodeInvalidAxis, "permutation %v repeats axis %d", p, axis)
		}
		seen[axis] = true
	}
	return nil
}

// Inverse returns the permutation that undoes p under Permute.
func (p Permutation) Inverse() Permutation {
	var q Permutation
	for i, axis := range p {
		q[axis] = i
	}
	return q
}

// Label names the output axes after the mesh axes they came from, joined
// by "×", e.g. "z×y×x" for HeightFirst. Invalid entries print as "?".
func (p Permutation) Label() string {
	names := [3]string{"?", "?", "?"}
	for i, axis := range p {
		if axis >= 0 && axis <= 2 {
			names[i] = string("xyz"[axis])
		}
	}
	return names[0] + "×" + names[1] + "×" + names[2]
}

// Permute returns a new grid whose axis i is g's axis p[i]. The receiver
// is not modified.
func (g *Grid) Permute(p Permutation) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := NewGrid(g.dims[p[0]], g.dims[p[1]], g.dims[p[2]])
	var src [3]int
	for i := range out.dims[0] {
		for j := range out.dims[1] {
			for k := range out.dims[2] {
				src[p[0]], src[p[1]], src[p[2]] = i, j, k
				out.cells[out.Index(i, j, k)] = g.cells[g.Index(src[0], src[1], src[2])]
			}
		}
	}
	return out, nil
}
