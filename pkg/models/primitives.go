package models

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
)

// DefaultMeshCells is the marching cubes resolution along the longest axis
// of a procedural solid.
const DefaultMeshCells = 64

// Box returns a closed box mesh with its minimum corner at the origin.
func Box(size math3d.Vec3, cells int) (*Mesh, error) {
	if !size.AllPositive() {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "box size %v must be positive", size)
	}
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	// sdf.Box3D centres the box at the origin.
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}))
	return meshSDF("box", s, cells)
}

// Cylinder returns a closed cylinder standing on the XY plane along +Z.
func Cylinder(height, radius float64, cells int) (*Mesh, error) {
	return roundedCylinder("cylinder", height, radius, 0, cells)
}

// Capsule returns a cylinder whose caps are fully rounded.
func Capsule(height, radius float64, cells int) (*Mesh, error) {
	return roundedCylinder("capsule", height, radius, radius, cells)
}

func roundedCylinder(name string, height, radius, round float64, cells int) (*Mesh, error) {
	if height <= 0 || radius <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "%s height %v and radius %v must be positive", name, height, radius)
	}
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))
	return meshSDF(name, s, cells)
}

// Tube returns a hollow cylinder, a solid whose axis column is empty.
func Tube(height, outer, inner float64, cells int) (*Mesh, error) {
	if height <= 0 || inner <= 0 || outer <= inner {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "tube needs 0 < inner < outer and positive height")
	}
	o, err := sdf.Cylinder3D(height, outer, 0)
	if err != nil {
		return nil, fmt.Errorf("tube: %w", err)
	}
	// The bore is taller than the tube so no cap film is left behind.
	i, err := sdf.Cylinder3D(height*1.5, inner, 0)
	if err != nil {
		return nil, fmt.Errorf("tube: %w", err)
	}
	s := sdf.Difference3D(o, i)
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))
	return meshSDF("tube", s, cells)
}

// meshSDF tessellates s with uniform marching cubes and merges shared
// vertices so the result is an indexed mesh.
func meshSDF(name string, s sdf.SDF3, cells int) (*Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, errors.New(errors.ErrCodeDegenerateMesh, "%s: marching cubes produced no triangles", name)
	}

	mesh := NewMesh(name)
	set := vertexSet{mesh: mesh, index: make(map[math3d.Vec3]int)}
	for _, tri := range triangles {
		var idx [3]int
		for j := range 3 {
			v := tri[j]
			idx[j] = set.add(math3d.V3(v.X, v.Y, v.Z))
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		mesh.AddFace(idx[0], idx[1], idx[2])
	}
	mesh.Refresh()
	return mesh, nil
}

// Cuboid returns an exact 12-triangle box spanning [min, max] with
// outward-facing counter-clockwise winding.
func Cuboid(min, max math3d.Vec3) *Mesh {
	mesh := NewMesh("cuboid")
	corner := func(x, y, z int) int {
		return mesh.AddVertex(math3d.V3(pick(x, min.X, max.X), pick(y, min.Y, max.Y), pick(z, min.Z, max.Z)))
	}
	var c [2][2][2]int
	for x := range 2 {
		for y := range 2 {
			for z := range 2 {
				c[x][y][z] = corner(x, y, z)
			}
		}
	}
	quads := [6][4]int{
		{c[0][0][0], c[0][0][1], c[0][1][1], c[0][1][0]}, // -X
		{c[1][0][0], c[1][1][0], c[1][1][1], c[1][0][1]}, // +X
		{c[0][0][0], c[1][0][0], c[1][0][1], c[0][0][1]}, // -Y
		{c[0][1][0], c[0][1][1], c[1][1][1], c[1][1][0]}, // +Y
		{c[0][0][0], c[0][1][0], c[1][1][0], c[1][0][0]}, // -Z
		{c[0][0][1], c[1][0][1], c[1][1][1], c[0][1][1]}, // +Z
	}
	for _, q := range quads {
		mesh.AddFace(q[0], q[1], q[2])
		mesh.AddFace(q[0], q[2], q[3])
	}
	mesh.Refresh()
	return mesh
}

func pick(bit int, lo, hi float64) float64 {
	if bit == 0 {
		return lo
	}
	return hi
}
