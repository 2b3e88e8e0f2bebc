package models

import (
	"math"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/math3d"
)

// Axis selectors for the height axis.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

func checkAxis(axis int) error {
	if axis < AxisX || axis > AxisZ {
		return errors.New(errors.ErrCodeInvalidAxis, "axis %d is not one of 0, 1, 2", axis)
	}
	return nil
}

// Rescale moves the mesh so its minimum along heightAxis is zero, then scales
// each axis by targetScale*pitch[axis]. Bounds and centroid are recomputed.
func (m *Mesh) Rescale(pitch math3d.Vec3, targetScale float64, heightAxis int) error {
	if err := checkAxis(heightAxis); err != nil {
		return err
	}
	if !pitch.AllPositive() {
		return errors.New(errors.ErrCodeInvalidParameter, "pitch %v must be positive on every axis", pitch)
	}
	if !(targetScale > 0) || math.IsInf(targetScale, 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "target scale %v must be a positive finite number", targetScale)
	}

	m.calculateBounds()
	shift := math3d.Vec3{}.With(heightAxis, -m.BoundsMin.At(heightAxis))
	m.Transform(math3d.Scale(pitch.Scale(targetScale)).Mul(math3d.Translate(shift)))
	return nil
}

// ScaleForHeight returns the target scale that makes the mesh span
// bricks cells along heightAxis once Rescale is applied.
func ScaleForHeight(m *Mesh, heightAxis int, bricks float64) (float64, error) {
	if err := checkAxis(heightAxis); err != nil {
		return 0, err
	}
	if !(bricks > 0) {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "height %v must be positive", bricks)
	}
	m.calculateBounds()
	extent := m.Size().At(heightAxis)
	if extent <= 0 {
		return 0, errors.New(errors.ErrCodeDegenerateMesh, "mesh %q has zero extent along axis %d", m.Name, heightAxis)
	}
	return bricks / extent, nil
}

// AlignTallestAxis rotates the mesh a quarter turn so that its longest
// bounding-box axis lies along heightAxis. It returns the axis that was
// tallest before rotation; no rotation happens if it already was heightAxis.
func (m *Mesh) AlignTallestAxis(heightAxis int) (int, error) {
	if err := checkAxis(heightAxis); err != nil {
		return 0, err
	}
	m.calculateBounds()
	tallest := m.Size().MaxAxis()
	if tallest == heightAxis {
		return tallest, nil
	}

	from := math3d.Vec3{}.With(tallest, 1)
	to := math3d.Vec3{}.With(heightAxis, 1)
	pivot := m.Center()
	rot := math3d.Translate(pivot).
		Mul(math3d.Rotate(from.Cross(to), math.Pi/2)).
		Mul(math3d.Translate(pivot.Scale(-1)))
	m.Transform(rot)
	return tallest, nil
}
