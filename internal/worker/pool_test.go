package worker_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"videostudio/internal/testsupport"
	"videostudio/internal/worker"
)

type countJob struct {
	id   string
	ran  *atomic.Int32
	done *sync.WaitGroup
	err  error
}

func (j *countJob) ID() string { return j.id }

func (j *countJob) Execute(context.Context) error {
	j.ran.Add(1)
	j.done.Done()
	return j.err
}

func TestDispatcherRunsAllSubmittedJobs(t *testing.T) {
	d := worker.NewDispatcher(3, 16, testsupport.Logger())
	d.Run(context.Background())
	defer d.Stop()

	var ran atomic.Int32
	var done sync.WaitGroup
	const n = 10
	done.Add(n)
	for i := 0; i < n; i++ {
		job := &countJob{id: fmt.Sprintf("job-%d", i), ran: &ran, done: &done}
		if err := d.Submit(job); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	waitDone(t, &done)
	if got := ran.Load(); got != n {
		t.Fatalf("ran %d jobs, want %d", got, n)
	}
}

func TestDispatcherJobErrorDoesNotStopWorkers(t *testing.T) {
	d := worker.NewDispatcher(1, 4, testsupport.Logger())
	d.Run(context.Background())
	defer d.Stop()

	var ran atomic.Int32
	var done sync.WaitGroup
	done.Add(2)
	if err := d.Submit(&countJob{id: "bad", ran: &ran, done: &done, err: errors.New("boom")}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := d.Submit(&countJob{id: "good", ran: &ran, done: &done}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	waitDone(t, &done)
	if got := ran.Load(); got != 2 {
		t.Fatalf("ran %d jobs, want 2", got)
	}
}

func TestSubmitRejectsWhenQueueFull(t *testing.T) {
	// Never started, so nothing drains the queue.
	d := worker.NewDispatcher(1, 1, testsupport.Logger())

	var ran atomic.Int32
	var done sync.WaitGroup
	done.Add(1)
	if err := d.Submit(&countJob{id: "first", ran: &ran, done: &done}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := d.Submit(&countJob{id: "second", ran: &ran, done: &done}); !errors.Is(err, worker.ErrQueueFull) {
		t.Fatalf("second submit: want ErrQueueFull, got %v", err)
	}
}

type blockJob struct {
	running chan struct{}
	release chan struct{}
}

func (j *blockJob) ID() string { return "blocker" }

func (j *blockJob) Execute(ctx context.Context) error {
	close(j.running)
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return nil
}

func TestStopReleasesQueuedJobDispatch(t *testing.T) {
	base := runtime.NumGoroutine()

	d := worker.NewDispatcher(1, 4, testsupport.Logger())
	d.Run(context.Background())

	blocker := &blockJob{running: make(chan struct{}), release: make(chan struct{})}
	if err := d.Submit(blocker); err != nil {
		t.Fatalf("submit blocker: %v", err)
	}
	<-blocker.running

	// Queued behind the busy worker, so its dispatch goroutine is waiting
	// for a worker channel that may never be offered again.
	var ran atomic.Int32
	var done sync.WaitGroup
	done.Add(1)
	if err := d.Submit(&countJob{id: "queued", ran: &ran, done: &done}); err != nil {
		t.Fatalf("submit queued: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	close(blocker.release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	// Every pool goroutine must wind down, including the dispatch goroutine
	// for the job that never reached a worker.
	deadline := time.After(5 * time.Second)
	for runtime.NumGoroutine() > base {
		select {
		case <-deadline:
			t.Fatalf("goroutines leaked: %d running, started with %d", runtime.NumGoroutine(), base)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not finish in time")
	}
}
