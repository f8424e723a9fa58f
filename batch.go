package iconvault

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/esimov/iconvault/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// SizeDelta holds the file size before and after a job ran.
type SizeDelta struct {
	Before int64
	After  int64
}

// Outcome is the result of one job of a batch.
type Outcome struct {
	// Index is the 1-based position of the job in the batch, used for logging only.
	Index int
	Job   Job
	Err   error
	// Size is set only when the runner tracks sizes and the job succeeded.
	Size *SizeDelta

	ran bool
}

// BatchRunner executes independent jobs over a fixed size worker pool.
type BatchRunner struct {
	Workers   int
	TrackSize bool
	// Label prefixes each job's log line, e.g. "Compressing".
	Label  string
	Logger zerolog.Logger

	invoked atomic.Int64
}

// NewBatchRunner returns a runner using the given number of workers.
// A non-positive or too large worker count falls back to the number of CPUs.
func NewBatchRunner(workers int, logger zerolog.Logger) *BatchRunner {
	return &BatchRunner{
		Workers: workers,
		Label:   "Processing",
		Logger:  logger,
	}
}

// WithLabel returns a copy of the runner logging jobs under label.
func (b *BatchRunner) WithLabel(label string) *BatchRunner {
	return &BatchRunner{
		Workers:   b.Workers,
		TrackSize: b.TrackSize,
		Label:     label,
		Logger:    b.Logger,
	}
}

// Invoked returns how many jobs the runner started so far.
func (b *BatchRunner) Invoked() int64 {
	return b.invoked.Load()
}

func (b *BatchRunner) workers(jobs int) int {
	n := b.Workers
	// Limit the concurrently running workers to maxWorkers.
	if n <= 0 || n > maxWorkers {
		n = runtime.NumCPU()
	}
	return utils.Max(1, utils.Min(n, jobs))
}

// Run executes every job and returns the outcome of each job that was started.
// The first failing job stops the dispatching of new jobs; jobs already handed
// to a worker are left to complete. The returned error is the first failure,
// annotated with the job's index.
func (b *BatchRunner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	if len(jobs) == 0 {
		return []Outcome{}, nil
	}

	outcomes := make([]Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	// Send the job indexes on an unbuffered channel: a job is either never
	// received or run by the worker which received it.
	indexes := make(chan int)
	g.Go(func() error {
		defer close(indexes)
		for i := range jobs {
			if gctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-gctx.Done():
				return ctx.Err()
			case indexes <- i:
			}
		}
		return nil
	})

	for w := 0; w < b.workers(len(jobs)); w++ {
		g.Go(func() error {
			for i := range indexes {
				out := b.runOne(ctx, i+1, jobs[i])
				outcomes[i] = out
				if out.Err != nil {
					return fmt.Errorf("job %d (%s): %w", out.Index, jobs[i].Source(), out.Err)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	ran := make([]Outcome, 0, len(outcomes))
	for _, out := range outcomes {
		if out.ran {
			ran = append(ran, out)
		}
	}
	return ran, err
}

// runOne executes a single job under the parent context, so that a failure
// elsewhere in the batch does not interrupt it.
func (b *BatchRunner) runOne(ctx context.Context, ith int, job Job) Outcome {
	b.invoked.Add(1)
	b.Logger.Info().
		Int("job", ith).
		Str("src", job.Source()).
		Str("dst", job.Dest()).
		Msgf("[%d] %s: %s -> %s", ith, b.Label, job.Source(), job.Dest())

	var before int64
	if b.TrackSize {
		if fi, err := os.Stat(job.Source()); err == nil {
			before = fi.Size()
		}
	}

	out := Outcome{Index: ith, Job: job, ran: true}
	if err := job.Run(ctx); err != nil {
		out.Err = err
		b.Logger.Error().Err(err).Int("job", ith).Msg("job failed")
		return out
	}

	if b.TrackSize {
		if fi, err := os.Stat(job.Dest()); err == nil {
			out.Size = &SizeDelta{Before: before, After: fi.Size()}
			b.Logger.Info().
				Int("job", ith).
				Int64("before", before).
				Int64("after", fi.Size()).
				Msgf("Size before: %s, after: %s", utils.FormatSize(before), utils.FormatSize(fi.Size()))
		}
	}
	return out
}
