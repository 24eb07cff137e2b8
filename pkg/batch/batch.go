// Package batch remaps many in-memory volumes concurrently and names each
// result the way an external writer would save it.
package batch

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"

	"ctcormack/internal/models"
	"ctcormack/pkg/config"
	"ctcormack/pkg/naming"
	"ctcormack/pkg/remap"
)

// Job is one volume to remap, identified by the name it was loaded from
type Job[T constraints.Float] struct {
	Name   string
	Volume *models.Volume[T]
}

// Result is a remapped volume and the name it should be saved under
type Result[T constraints.Float] struct {
	// Source is the name of the job the result came from
	Source string

	// Name is Source with the output prefix applied
	Name string

	Volume *models.Volume[T]
}

// Runner remaps batches of volumes in one direction
type Runner[T constraints.Float] struct {
	// Direction selects the transform applied to every job
	Direction remap.Direction

	// Prefix is prepended to output names; empty uses the direction default
	Prefix string

	// NumCores bounds both the volumes processed at once and the
	// goroutines used per volume. <= 0 uses every CPU.
	NumCores int

	// RejectNonFinite fails a job holding NaN or infinite samples
	RejectNonFinite bool

	// Verbose enables per-volume progress logging
	Verbose bool

	// Logger receives progress output; nil uses log.Default()
	Logger *log.Logger
}

// NewRunner builds a runner from a validated configuration
func NewRunner[T constraints.Float](cfg *config.Config) (*Runner[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir, err := cfg.Direction()
	if err != nil {
		return nil, err
	}

	return &Runner[T]{
		Direction:       dir,
		Prefix:          cfg.Remap.Prefix,
		NumCores:        cfg.Processing.NumCores,
		RejectNonFinite: cfg.Remap.RejectNonFinite,
		Verbose:         cfg.Output.Verbose,
	}, nil
}

func (r *Runner[T]) logf(format string, args ...interface{}) {
	if !r.Verbose {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Run remaps every job and returns the results in job order. Job volumes
// are never modified. The first failing job, or cancellation of ctx, stops
// the batch and its error is returned.
func (r *Runner[T]) Run(ctx context.Context, jobs []Job[T]) ([]Result[T], error) {
	numCores := r.NumCores
	if numCores <= 0 {
		numCores = runtime.NumCPU()
	}

	// Split cores between concurrent volumes and the work inside each
	concurrent := min(numCores, max(len(jobs), 1))
	perVolume := max(numCores/concurrent, 1)

	results := make([]Result[T], len(jobs))
	startTime := time.Now()
	r.logf("Remapping %d volumes (%v) on %d cores", len(jobs), r.Direction, numCores)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrent)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := r.runJob(job, perVolume)
			if err != nil {
				return fmt.Errorf("volume %d (%s): %w", i, job.Name, err)
			}
			results[i] = res

			r.logf("Remapped %s -> %s (%d voxels)", res.Source, res.Name, len(res.Volume.Data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logf("Batch completed in %.2f seconds", time.Since(startTime).Seconds())
	return results, nil
}

// runJob remaps a single volume
func (r *Runner[T]) runJob(job Job[T], numCores int) (Result[T], error) {
	if job.Volume == nil {
		return Result[T]{}, fmt.Errorf("no volume")
	}
	if r.RejectNonFinite {
		if err := remap.CheckFinite(job.Volume.Data); err != nil {
			return Result[T]{}, err
		}
	}

	out, err := remap.TransformVolume(job.Volume, r.Direction, numCores)
	if err != nil {
		return Result[T]{}, err
	}

	return Result[T]{
		Source: job.Name,
		Name:   naming.ForDirection(job.Name, r.Prefix, r.Direction),
		Volume: out,
	}, nil
}
