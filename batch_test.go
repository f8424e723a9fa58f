package iconvault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBatch_ShouldDoNothingForEmptyInput(t *testing.T) {
	r := NewBatchRunner(4, zerolog.Nop())
	outcomes, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcomes == nil || len(outcomes) != 0 {
		t.Errorf("Expected an empty outcome list, got %v", outcomes)
	}
	if r.Invoked() != 0 {
		t.Errorf("No job should have been invoked, got %d", r.Invoked())
	}
}

func TestBatch_ShouldRunEveryJob(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	jobs := make([]Job, 0, 10)
	for i := 0; i < 10; i++ {
		dst := filepath.Join(dir, string(rune('a'+i))+".out")
		jobs = append(jobs, funcJob{src: dst, dst: dst, fn: func(ctx context.Context) error {
			calls.Add(1)
			return os.WriteFile(dst, []byte("ok"), 0644)
		}})
	}

	outcomes, err := NewBatchRunner(3, zerolog.Nop()).Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 10 || calls.Load() != 10 {
		t.Fatalf("Expected 10 outcomes and calls, got %d and %d", len(outcomes), calls.Load())
	}
	for i, out := range outcomes {
		if out.Index != i+1 {
			t.Errorf("Outcome %d has index %d", i, out.Index)
		}
		if out.Err != nil {
			t.Errorf("Outcome %d failed: %v", i, out.Err)
		}
	}
}

func TestBatch_ShouldFailFast(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.out")
	boom := errors.New("boom")
	firstDone := make(chan struct{})

	jobs := []Job{
		funcJob{src: first, dst: first, fn: func(ctx context.Context) error {
			defer close(firstDone)
			return os.WriteFile(first, []byte("ok"), 0644)
		}},
		// The second job fails only once the first one has been handed out and finished.
		funcJob{src: "second", dst: "second", fn: func(ctx context.Context) error {
			select {
			case <-firstDone:
			case <-time.After(5 * time.Second):
				return errors.New("the first job was never run")
			}
			return boom
		}},
		funcJob{src: "third", dst: "third", fn: func(ctx context.Context) error {
			return nil
		}},
	}

	for n := 0; n < 20; n++ {
		os.Remove(first)
		firstDone = make(chan struct{})

		outcomes, err := NewBatchRunner(2, zerolog.Nop()).Run(context.Background(), jobs)
		if !errors.Is(err, boom) {
			t.Fatalf("Expected the job error to be surfaced, got %v", err)
		}
		if _, err := os.Stat(first); err != nil {
			t.Fatalf("The first job output should exist: %v", err)
		}
		if len(outcomes) < 2 || outcomes[0].Err != nil || outcomes[1].Err == nil {
			t.Fatalf("Unexpected outcomes: %+v", outcomes)
		}
	}
}

func TestBatch_ShouldRunDispatchedJobsToCompletion(t *testing.T) {
	var completed atomic.Int32
	failed := make(chan struct{})
	slow := funcJob{src: "slow", dst: "slow", fn: func(ctx context.Context) error {
		<-failed
		time.Sleep(10 * time.Millisecond)
		completed.Add(1)
		return nil
	}}
	jobs := []Job{
		slow,
		slow,
		funcJob{src: "fail", dst: "fail", fn: func(ctx context.Context) error {
			close(failed)
			return errors.New("fail")
		}},
	}

	outcomes, err := NewBatchRunner(3, zerolog.Nop()).Run(context.Background(), jobs)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if completed.Load() != 2 || len(outcomes) != 3 {
		t.Errorf("The running jobs should complete after a sibling failed, got %d completed and %d outcomes", completed.Load(), len(outcomes))
	}
}

func TestBatch_ShouldStopOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	jobs := make([]Job, 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, funcJob{src: "x", dst: "x", fn: func(ctx context.Context) error {
			if calls.Add(1) == 1 {
				cancel()
			}
			return nil
		}})
	}

	_, err := NewBatchRunner(1, zerolog.Nop()).Run(ctx, jobs)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the cancellation to be reported, got %v", err)
	}
	if calls.Load() >= 20 {
		t.Errorf("No job should be dispatched after the cancellation, got %d calls", calls.Load())
	}
}

func TestBatch_ShouldStopSchedulingAfterFailure(t *testing.T) {
	var calls atomic.Int32
	jobs := make([]Job, 0, 50)
	for i := 0; i < 50; i++ {
		jobs = append(jobs, funcJob{src: "x", dst: "x", fn: func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("fail")
		}})
	}

	r := NewBatchRunner(1, zerolog.Nop())
	outcomes, err := r.Run(context.Background(), jobs)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if calls.Load() >= 50 {
		t.Errorf("Scheduling should have stopped after the first failure, got %d calls", calls.Load())
	}
	if len(outcomes) != int(calls.Load()) {
		t.Errorf("Every started job should report an outcome: %d != %d", len(outcomes), calls.Load())
	}
}

func TestBatch_ShouldTrackSizes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in")
	dst := filepath.Join(dir, "out")
	if err := os.WriteFile(src, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	job := funcJob{src: src, dst: dst, fn: func(ctx context.Context) error {
		return os.WriteFile(dst, make([]byte, 40), 0644)
	}}

	r := NewBatchRunner(1, zerolog.Nop())
	r.TrackSize = true
	outcomes, err := r.Run(context.Background(), []Job{job})
	if err != nil {
		t.Fatal(err)
	}
	if outcomes[0].Size == nil {
		t.Fatal("Expected the size to be tracked")
	}
	if outcomes[0].Size.Before != 100 || outcomes[0].Size.After != 40 {
		t.Errorf("Unexpected size delta: %+v", *outcomes[0].Size)
	}
}

func TestBatch_WorkerCount(t *testing.T) {
	cases := []struct {
		workers, jobs, want int
	}{
		{4, 10, 4},
		{4, 2, 2},
		{0, 1000, runtime.NumCPU()},
		{maxWorkers + 1, 1000, runtime.NumCPU()},
	}
	for _, tc := range cases {
		r := NewBatchRunner(tc.workers, zerolog.Nop())
		want := tc.want
		if want > tc.jobs {
			want = tc.jobs
		}
		if got := r.workers(tc.jobs); got != want {
			t.Errorf("workers(%d) with %d configured = %d, want %d", tc.jobs, tc.workers, got, want)
		}
	}
}
