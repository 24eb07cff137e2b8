package models

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// ErrShapeMismatch is returned when a volume's sample count does not match
// its declared dimensions.
var ErrShapeMismatch = errors.New("volume shape mismatch")

// Volume represents a 3D scan volume held in memory
type Volume[T constraints.Float] struct {
	// Data holds the voxel intensities as a 1D array in row-major order
	// (x fastest, then y, then z)
	Data []T

	// Width is the width of the volume in voxels
	Width int

	// Height is the height of the volume in voxels
	Height int

	// Depth is the depth of the volume in voxels
	Depth int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize struct {
		X, Y, Z float64
	}

	// Affine maps voxel indices to scanner space. It is carried through
	// every intensity transform untouched.
	Affine [4][4]float64
}

// NewVolume allocates a zero-filled volume with unit voxels and an identity affine
func NewVolume[T constraints.Float](width, height, depth int) *Volume[T] {
	v := &Volume[T]{
		Data:   make([]T, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
		Affine: Identity(),
	}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = 1, 1, 1
	return v
}

// Identity returns the 4x4 identity affine
func Identity() [4][4]float64 {
	var a [4][4]float64
	for i := range a {
		a[i][i] = 1
	}
	return a
}

// Len returns the number of voxels declared by the dimensions
func (v *Volume[T]) Len() int {
	return v.Width * v.Height * v.Depth
}

// Index returns the position of voxel (x, y, z) in Data
func (v *Volume[T]) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the intensity at voxel (x, y, z)
func (v *Volume[T]) At(x, y, z int) T {
	return v.Data[v.Index(x, y, z)]
}

// Validate checks that the dimensions are non-negative and agree with len(Data)
func (v *Volume[T]) Validate() error {
	if v.Width < 0 || v.Height < 0 || v.Depth < 0 {
		return fmt.Errorf("%w: negative dimension %dx%dx%d", ErrShapeMismatch, v.Width, v.Height, v.Depth)
	}
	if overflows(v.Width, v.Height, v.Depth) {
		return fmt.Errorf("%w: %dx%dx%d overflows int", ErrShapeMismatch, v.Width, v.Height, v.Depth)
	}
	if len(v.Data) != v.Len() {
		return fmt.Errorf("%w: %dx%dx%d needs %d samples, have %d",
			ErrShapeMismatch, v.Width, v.Height, v.Depth, v.Len(), len(v.Data))
	}
	return nil
}

// overflows reports whether the product of non-negative dims exceeds math.MaxInt
func overflows(dims ...int) bool {
	n := 1
	for _, d := range dims {
		if d == 0 {
			return false
		}
		if n > math.MaxInt/d {
			return true
		}
		n *= d
	}
	return false
}

// WithData returns a volume sharing v's metadata but holding data.
// The caller hands over ownership of data.
func (v *Volume[T]) WithData(data []T) *Volume[T] {
	out := &Volume[T]{
		Data:   data,
		Width:  v.Width,
		Height: v.Height,
		Depth:  v.Depth,
		Affine: v.Affine,
	}
	out.VoxelSize = v.VoxelSize
	return out
}

// Clone returns a deep copy of the volume
func (v *Volume[T]) Clone() *Volume[T] {
	data := make([]T, len(v.Data))
	copy(data, v.Data)
	return v.WithData(data)
}
