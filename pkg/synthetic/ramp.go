// Package synthetic builds deterministic test volumes covering the full
// Hounsfield range.
package synthetic

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"ctcormack/internal/models"
)

// Parameters of the reference Hounsfield ramp: 14x14x14 voxels holding the
// integers -1024 through 1719, which spans everything from below the clamp
// floor to well above the boost window.
const (
	RampStart = -1024
	RampDim   = 14
	RampStop  = RampStart + RampDim*RampDim*RampDim
)

// ErrInvalidDimensions is returned when a requested volume has a
// non-positive dimension.
var ErrInvalidDimensions = errors.New("invalid volume dimensions")

// HounsfieldRamp returns the reference float32 ramp volume with unit voxels
// and an identity affine
func HounsfieldRamp() *models.Volume[float32] {
	vol, err := Ramp[float32](RampStart, RampDim, RampDim, RampDim)
	if err != nil {
		// The reference dimensions are constant and positive
		panic(err)
	}
	return vol
}

// Ramp fills a width x height x depth volume with consecutive integers
// starting at start, in row-major order
func Ramp[T constraints.Float](start, width, height, depth int) (*models.Volume[T], error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, width, height, depth)
	}

	vol := models.NewVolume[T](width, height, depth)
	for i := range vol.Data {
		vol.Data[i] = T(start + i)
	}
	return vol, nil
}
