package queue

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
)

const channelBuffer = 256

type job struct {
	ctx  context.Context
	fn   func()
	err  error // set before done is closed
	done chan struct{}
}

// Pool runs CPU-bound work on a fixed set of worker goroutines so that
// concurrent requests cannot run more of it at once than there are workers.
type Pool struct {
	workers int
	jobs    chan *job
	log     zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, one worker per CPU is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		workers: numWorkers,
		jobs:    make(chan *job, channelBuffer),
		log:     log,
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
}

// Do queues fn and blocks until a worker has run it or ctx is done.
// A nil return means fn ran to completion. Otherwise Do returns ctx.Err()
// and fn either never ran or its results must be ignored by the caller.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Inc()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Dec()
			if j.ctx.Err() != nil {
				p.log.Debug().Int("worker_id", id).Msg("skipping job for cancelled request")
				j.err = j.ctx.Err()
				close(j.done)
				continue
			}
			j.fn()
			close(j.done)
		}
	}
}
