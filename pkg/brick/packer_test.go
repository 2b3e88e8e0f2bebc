package brick

import (
	"math/rand/v2"
	"testing"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/run"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

func solidGrid(dz, dy, dx int) *voxel.Grid {
	g := voxel.NewGrid(dz, dy, dx)
	for i := range g.Len() {
		z, y, x := g.Coords(i)
		g.Set(z, y, x, true)
	}
	return g
}

// randomGrid fills cells with probability p, reproducibly.
func randomGrid(seed uint64, dz, dy, dx int, p float64) *voxel.Grid {
	rng := rand.New(rand.NewPCG(seed, 0))
	g := voxel.NewGrid(dz, dy, dx)
	for i := range g.Len() {
		if rng.Float64() < p {
			z, y, x := g.Coords(i)
			g.Set(z, y, x, true)
		}
	}
	return g
}

func TestPackScenarios(t *testing.T) {
	floating := voxel.NewGrid(2, 1, 1)
	floating.Set(1, 0, 0, true)

	tests := []struct {
		name      string
		grid      *voxel.Grid
		want      []Placement
		wantUnfil int
	}{
		{
			name: "solid cube uses one slab per layer",
			grid: solidGrid(2, 2, 2),
			want: []Placement{
				{Shape{1, 2, 2}, [3]int{0, 0, 0}, "green"},
				{Shape{1, 2, 2}, [3]int{1, 0, 0}, "green"},
			},
		},
		{
			name: "single cell",
			grid: solidGrid(1, 1, 1),
			want: []Placement{{Shape{1, 1, 1}, [3]int{0, 0, 0}, "red"}},
		},
		{
			name:      "floating cell stays unfilled",
			grid:      floating,
			want:      nil,
			wantUnfil: 1,
		},
		{
			name: "empty grid",
			grid: voxel.NewGrid(3, 3, 3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewPacker(BasicCatalog()).Pack(nil, tt.grid)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Placements) != len(tt.want) {
				t.Fatalf("placements = %v, want %v", res.Placements, tt.want)
			}
			for i := range tt.want {
				if res.Placements[i] != tt.want[i] {
					t.Errorf("placement %d = %v, want %v", i, res.Placements[i], tt.want[i])
				}
			}
			if res.Stats.Unfilled != tt.wantUnfil {
				t.Errorf("unfilled = %d, want %d", res.Stats.Unfilled, tt.wantUnfil)
			}
			if res.Stats.Bricks != len(tt.want) {
				t.Errorf("bricks = %d", res.Stats.Bricks)
			}
		})
	}
}

func TestPackDoesNotTouchOccupancy(t *testing.T) {
	g := randomGrid(3, 4, 5, 6, 0.7)
	before := g.Clone()
	if _, err := NewPacker(DefaultCatalog()).Pack(nil, g); err != nil {
		t.Fatal(err)
	}
	if !g.Equal(before) {
		t.Error("Pack mutated its input")
	}
}

func TestPackInvariants(t *testing.T) {
	for _, order := range Traversals {
		for _, support := range SupportPolicies {
			for seed := range uint64(4) {
				t.Run(string(order)+"/"+string(support), func(t *testing.T) {
					occ := randomGrid(seed, 5, 9, 11, 0.8)
					p := &Packer{Catalog: DefaultCatalog(), Order: order, Support: support}

					var prev *voxel.Grid
					p.OnPlace = func(pl Placement, filled *voxel.Grid) {
						if prev != nil {
							for i := range prev.Len() {
								z, y, x := prev.Coords(i)
								if prev.At(z, y, x) && !filled.At(z, y, x) {
									t.Fatalf("cell %d,%d,%d was cleared", z, y, x)
								}
							}
							if filled.Count() != prev.Count()+pl.Shape.Volume() {
								t.Fatalf("placement %v changed %d cells", pl, filled.Count()-prev.Count())
							}
						}
						prev = filled.Clone()
					}

					res, err := p.Pack(nil, occ)
					if err != nil {
						t.Fatal(err)
					}
					if err := Verify(occ, res.Placements, support); err != nil {
						t.Fatal(err)
					}
					for i := range res.Filled.Len() {
						z, y, x := res.Filled.Coords(i)
						if res.Filled.At(z, y, x) && !occ.At(z, y, x) {
							t.Fatalf("filled cell %d,%d,%d is not solid", z, y, x)
						}
					}
					if got := res.Stats.Filled + res.Stats.Unfilled; got != occ.Count() {
						t.Errorf("filled+unfilled = %d, solid = %d", got, occ.Count())
					}
				})
			}
		}
	}
}

func TestPackDeterministic(t *testing.T) {
	occ := randomGrid(9, 4, 8, 8, 0.75)
	a, _ := NewPacker(DefaultCatalog()).Pack(nil, occ)
	b, _ := NewPacker(DefaultCatalog()).Pack(nil, occ)
	if len(a.Placements) != len(b.Placements) {
		t.Fatal("placement count differs between runs")
	}
	for i := range a.Placements {
		if a.Placements[i] != b.Placements[i] {
			t.Fatalf("placement %d differs", i)
		}
	}
}

func TestPackCentered(t *testing.T) {
	occ := solidGrid(1, 1, 3)

	lex, _ := NewPacker(BasicCatalog()).Pack(nil, occ)
	if lex.Placements[0].Origin != [3]int{0, 0, 0} || lex.Placements[0].Shape != (Shape{1, 1, 2}) {
		t.Errorf("lexicographic first placement = %v", lex.Placements[0])
	}

	p := NewPacker(BasicCatalog())
	p.Order = Centered
	ctr, _ := p.Pack(nil, occ)
	if ctr.Placements[0].Origin != [3]int{0, 0, 1} || ctr.Placements[0].Shape != (Shape{1, 1, 2}) {
		t.Errorf("centered first placement = %v", ctr.Placements[0])
	}
	if ctr.Placements[1].Origin != [3]int{0, 0, 0} {
		t.Errorf("centered second placement = %v", ctr.Placements[1])
	}
}

func TestAxisOrder(t *testing.T) {
	tests := []struct {
		order Traversal
		n     int
		want  []int
	}{
		{Lexicographic, 4, []int{0, 1, 2, 3}},
		{Centered, 4, []int{2, 3, 0, 1}},
		{Centered, 5, []int{2, 3, 4, 0, 1}},
		{Centered, 1, []int{0}},
		{Centered, 0, []int{}},
	}
	for _, tt := range tests {
		got := tt.order.axisOrder(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("%s(%d) = %v", tt.order, tt.n, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s(%d) = %v, want %v", tt.order, tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestSupportWindow(t *testing.T) {
	// A pillar under x=0 and an overhang over x=1..2.
	occ := voxel.NewGrid(2, 1, 3)
	occ.Set(0, 0, 0, true)
	occ.Set(1, 0, 1, true)
	occ.Set(1, 0, 2, true)

	foot, _ := NewPacker(BasicCatalog()).Pack(nil, occ)
	if len(foot.Placements) != 1 {
		t.Errorf("footprint support placed %v", foot.Placements)
	}

	p := NewPacker(BasicCatalog())
	p.Support = SupportWindow
	win, _ := p.Pack(nil, occ)
	if len(win.Placements) != 2 || win.Placements[1].Shape != (Shape{1, 1, 2}) {
		t.Errorf("window support placed %v", win.Placements)
	}
	if err := Verify(occ, win.Placements, SupportFootprint); err == nil {
		t.Error("window placement passed footprint verification")
	}
}

func TestSupportWindowNoWrap(t *testing.T) {
	// Filled cell at the far edge must not support a brick at the near edge.
	filled := voxel.NewGrid(2, 1, 4)
	filled.Set(0, 0, 3, true)
	if SupportWindow.supported(filled, Shape{1, 1, 2}, 1, 0, 0) {
		t.Error("window wrapped around the grid edge")
	}
	if !SupportWindow.supported(filled, Shape{1, 1, 2}, 1, 0, 2) {
		t.Error("window missed a cell under the footprint")
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		name string
		p    *Packer
		grid *voxel.Grid
	}{
		{"nil grid", NewPacker(BasicCatalog()), nil},
		{"empty catalog", &Packer{}, solidGrid(1, 1, 1)},
		{"bad traversal", &Packer{Catalog: BasicCatalog(), Order: "spiral"}, solidGrid(1, 1, 1)},
		{"bad support", &Packer{Catalog: BasicCatalog(), Support: "glue"}, solidGrid(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.p.Pack(nil, tt.grid); !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("err = %v, want INVALID_PARAMETER", err)
			}
		})
	}
}

func TestPackProgress(t *testing.T) {
	var calls [][2]int
	rc := run.New(func(stage run.Stage, done, total int) {
		if stage != run.StagePack {
			t.Errorf("stage = %s", stage)
		}
		calls = append(calls, [2]int{done, total})
	}, nil)
	if _, err := NewPacker(BasicCatalog()).Pack(rc, solidGrid(3, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 4 || calls[3] != [2]int{3, 3} {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestVerifyRejects(t *testing.T) {
	occ := solidGrid(2, 2, 2)
	tests := []struct {
		name string
		pl   []Placement
	}{
		{"overlap", []Placement{{Shape: Shape{1, 2, 2}}, {Shape: Shape{1, 1, 1}, Origin: [3]int{0, 1, 1}}}},
		{"out of bounds", []Placement{{Shape: Shape{1, 1, 3}}}},
		{"negative origin", []Placement{{Shape: Shape{1, 1, 1}, Origin: [3]int{0, -1, 0}}}},
		{"unsupported", []Placement{{Shape: Shape{1, 1, 1}, Origin: [3]int{1, 0, 0}}}},
		{"bad shape", []Placement{{Shape: Shape{0, 1, 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(occ, tt.pl, SupportFootprint); err == nil {
				t.Error("Verify accepted an invalid list")
			}
		})
	}

	hollow := voxel.NewGrid(1, 1, 2)
	hollow.Set(0, 0, 0, true)
	if err := Verify(hollow, []Placement{{Shape: Shape{1, 1, 2}}}, SupportFootprint); err == nil {
		t.Error("Verify accepted a brick over an empty cell")
	}
}

func TestStats(t *testing.T) {
	res, err := NewPacker(BasicCatalog()).Pack(nil, solidGrid(1, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	s := res.Stats
	if s.Solid != 9 || s.Filled != 9 || s.Unfilled != 0 {
		t.Errorf("stats = %+v", s)
	}
	total := 0
	for _, row := range s.Breakdown() {
		total += row.Count
	}
	if total != s.Bricks {
		t.Errorf("breakdown sums to %d, bricks = %d", total, s.Bricks)
	}
	if s.FillRatio() != 1 {
		t.Errorf("FillRatio = %v", s.FillRatio())
	}
	if (Stats{}).FillRatio() != 0 {
		t.Error("empty stats must have zero ratio")
	}
}

func BenchmarkPack(b *testing.B) {
	occ := randomGrid(1, 16, 32, 32, 0.85)
	p := NewPacker(DefaultCatalog())
	for b.Loop() {
		if _, err := p.Pack(nil, occ); err != nil {
			b.Fatal(err)
		}
	}
}
