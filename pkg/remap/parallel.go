package remap

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/exp/constraints"

	"ctcormack/internal/models"
)

// minSamplesPerCore keeps goroutine overhead below the cost of the work
// itself. Inputs smaller than this run on the calling goroutine.
const minSamplesPerCore = 1 << 14

// TransformParallel returns the same result as Transform, dividing the
// samples into contiguous chunks that are processed on up to numCores
// goroutines. numCores <= 0 uses every available CPU.
func TransformParallel[T constraints.Float](samples []T, dir Direction, numCores int) []T {
	if numCores <= 0 {
		numCores = runtime.NumCPU()
	}

	n := len(samples)
	out := make([]T, n)

	// Never hand a core less than minSamplesPerCore samples
	if maxCores := n / minSamplesPerCore; numCores > maxCores {
		numCores = maxCores
	}
	if numCores <= 1 {
		transformInto(out, samples, dir)
		return out
	}

	samplesPerCore := (n + numCores - 1) / numCores

	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		start := c * samplesPerCore
		if start >= n {
			break
		}
		end := min(start+samplesPerCore, n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			transformInto(out[start:end], samples[start:end], dir)
		}(start, end)
	}

	// Wait for all cores to finish
	wg.Wait()

	return out
}

// TransformVolume remaps every voxel of v and returns a new volume with the
// same dimensions, voxel size and affine. v is left untouched.
//
// Parameters:
//   - v: Source volume; its Data length must match its dimensions
//   - dir: Transform direction
//   - numCores: Goroutines to use, <= 0 for all CPUs
//
// Returns:
//   - The remapped volume, or an error wrapping models.ErrShapeMismatch
func TransformVolume[T constraints.Float](v *models.Volume[T], dir Direction, numCores int) (*models.Volume[T], error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil volume", models.ErrShapeMismatch)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v.WithData(TransformParallel(v.Data, dir, numCores)), nil
}
