package workerpool

import (
	"fmt"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
)

// Pool runs jobs on a fixed set of workers fed by one dispatch channel.
//
// The pool must be released with Close, which waits for every queued job
// and every worker.
type Pool struct {
	opts    Options
	workers []*worker

	// mu orders Execute against Close: sends take the read lock, Close
	// takes the write lock while it enqueues terminate messages.
	mu     sync.RWMutex
	tx     *sender
	rx     *receiver
	closed bool

	closeOnce sync.Once
}

// New creates a pool with size workers.
//
// It returns a *PoolCreationError if size is not positive; in that case
// no worker is started.
func New(size int) (*Pool, error) {
	return NewFromOptions(Options{Workers: size})
}

func NewFromOptions(opts Options) (*Pool, error) {
	if opts.Workers <= 0 {
		return nil, &PoolCreationError{Message: msgInvalidSize}
	}
	opts.FillDefaults()

	tx, rx := newChannel()
	shared := newSharedReceiver(rx)

	p := &Pool{
		opts:    opts,
		workers: make([]*worker, 0, opts.Workers),
		tx:      tx,
		rx:      rx,
	}
	for id := range opts.Workers {
		p.workers = append(p.workers, p.spawnWorker(id, shared.clone()))
	}
	// workers now hold the only references to the receiver
	shared.release()

	lg.FromContext(opts.Ctx).Info("Worker pool started",
		lg.Int("workers", opts.Workers),
		lg.Any("lock_os_thread", opts.LockOSThread),
		lg.Any("pin_workers", opts.PinWorkers),
	)
	return p, nil
}

// Execute queues job for execution by the next idle worker and returns
// immediately.
//
// Execute panics with ErrNilJob for a nil job and with ErrPoolClosed after
// Close; both are programming errors.
func (p *Pool) Execute(job Job) {
	if job == nil {
		panic(ErrNilJob)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		panic(ErrPoolClosed)
	}
	// counted before the send so a worker never decrements first
	p.opts.Metrics.IncQueued()
	if err := p.tx.send(newJobMessage(job)); err != nil {
		p.opts.Metrics.BatchDecQueued(1)
		panic(fmt.Errorf("workerpool: execute: %w", err))
	}
}

// Close shuts the pool down and blocks until every worker has exited.
//
// One terminate message per worker is queued behind any pending jobs, so
// all jobs submitted before Close run to completion. Workers are then
// joined in id order. Jobs that panicked are reported as *WorkerPanicError
// values, combined when several workers failed.
//
// Close is idempotent: later calls wait for the first one and return nil.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.shutdown()
	})
	return err
}

func (p *Pool) shutdown() error {
	logger := lg.FromContext(p.opts.Ctx)

	p.mu.Lock()
	p.closed = true
	logger.Info("Sending terminate message to all workers", lg.Int("workers", len(p.workers)))
	for range p.workers {
		if err := p.tx.send(newTerminateMessage()); err != nil {
			// every worker is already gone
			logger.Warn("terminate not delivered", lg.Any("error", err))
			break
		}
	}
	p.tx.release()
	p.mu.Unlock()

	logger.Info("Shutting down all workers")

	var errs error
	for _, w := range p.workers {
		logger.Info("Shutting down worker", lg.Int("worker", w.id))
		if err := w.join(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Size returns the number of workers. It never changes.
func (p *Pool) Size() int { return len(p.workers) }

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// QueueLength returns the number of messages waiting in the dispatch channel.
func (p *Pool) QueueLength() int { return p.rx.len() }
