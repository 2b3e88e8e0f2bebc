package voxel

// neighbours6 are the face-adjacent offsets.
var neighbours6 = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Surface marks solid cells with at least one empty or out-of-grid face
// neighbour. It is a diagnostic view and does not feed the packer.
func Surface(g *Grid) *Grid {
	out := NewGridLike(g)
	for i, solid := range g.cells {
		if !solid {
			continue
		}
		a, b, c := g.Coords(i)
		for _, d := range neighbours6 {
			if !g.At(a+d[0], b+d[1], c+d[2]) {
				out.cells[i] = true
				break
			}
		}
	}
	return out
}
