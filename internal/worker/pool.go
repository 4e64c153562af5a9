// Package worker runs background jobs on a fixed pool of goroutines. Render
// attempts and media ingests execute here so HTTP handlers can return as soon
// as the work is accepted.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of background work.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

// ErrQueueFull is returned when the job queue cannot accept another job.
var ErrQueueFull = errors.New("job queue is full")

type worker struct {
	id   int
	pool chan chan Job
	jobs chan Job
	quit chan struct{}
	wg   *sync.WaitGroup
	log  *logrus.Logger
}

func newWorker(id int, pool chan chan Job, wg *sync.WaitGroup, log *logrus.Logger) *worker {
	return &worker{
		id:   id,
		pool: pool,
		jobs: make(chan Job),
		quit: make(chan struct{}),
		wg:   wg,
		log:  log,
	}
}

func (w *worker) start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Re-register for the next job.
			w.pool <- w.jobs

			select {
			case job := <-w.jobs:
				entry := w.log.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()})
				entry.Info("Job started")
				if err := job.Execute(ctx); err != nil {
					entry.WithError(err).Error("Job failed")
				} else {
					entry.Info("Job finished")
				}
			case <-w.quit:
				return
			}
		}
	}()
}

func (w *worker) stop() {
	close(w.quit)
}

// Dispatcher owns the worker pool and the buffered job queue.
type Dispatcher struct {
	maxWorkers int
	pool       chan chan Job
	queue      chan Job
	workers    []*worker
	wg         sync.WaitGroup
	quit       chan struct{}
	log        *logrus.Logger
}

func NewDispatcher(maxWorkers, queueSize int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		pool:       make(chan chan Job, maxWorkers),
		queue:      make(chan Job, queueSize),
		workers:    make([]*worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop. Jobs inherit ctx, so
// cancelling it aborts in-flight work.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.WithField("workers", d.maxWorkers).Info("Dispatcher starting")
	for i := 1; i <= d.maxWorkers; i++ {
		w := newWorker(i, d.pool, &d.wg, d.log)
		d.workers = append(d.workers, w)
		w.start(ctx)
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.queue:
			go func(job Job) {
				// Bail out on shutdown: a stopped pool never frees a worker
				// channel, and a stopped worker never drains one.
				select {
				case jobs := <-d.pool:
					select {
					case jobs <- job:
					case <-d.quit:
						d.log.WithField("job_id", job.ID()).Warn("Job dropped during shutdown")
					}
				case <-d.quit:
					d.log.WithField("job_id", job.ID()).Warn("Job dropped during shutdown")
				}
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit queues a job without blocking.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.queue <- job:
		d.log.WithField("job_id", job.ID()).Debug("Job queued")
		return nil
	default:
		d.log.WithField("job_id", job.ID()).Warn("Job queue full")
		return ErrQueueFull
	}
}

// Stop shuts the pool down and waits for in-flight jobs to finish.
func (d *Dispatcher) Stop() {
	close(d.quit)
	for _, w := range d.workers {
		w.stop()
	}
	d.wg.Wait()
	d.log.Info("Dispatcher stopped")
}
