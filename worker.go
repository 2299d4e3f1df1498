package workerpool

import (
	"fmt"
	"runtime"
	"runtime/debug"

	lg "github.com/Andrej220/go-utils/zlog"
)

// threadHandle is the joinable end of a worker goroutine.
//
// done is closed when the goroutine returns; panicErr is written before
// that and must only be read after done is closed.
type threadHandle struct {
	done     chan struct{}
	panicErr *WorkerPanicError
}

func (h *threadHandle) wait() error {
	<-h.done
	if h.panicErr != nil {
		return h.panicErr
	}
	return nil
}

// worker pairs a stable diagnostic id with the handle of its goroutine.
type worker struct {
	id     int
	handle *threadHandle
}

// join takes the handle and blocks until the goroutine has exited.
// A second join returns immediately.
func (w *worker) join() error {
	h := w.handle
	w.handle = nil
	if h == nil {
		return nil
	}
	return h.wait()
}

func (p *Pool) spawnWorker(id int, rx *sharedReceiver) *worker {
	h := &threadHandle{done: make(chan struct{})}
	go p.runWorker(id, rx, h)
	return &worker{id: id, handle: h}
}

func (p *Pool) runWorker(id int, rx *sharedReceiver, h *threadHandle) {
	defer close(h.done)
	defer p.releaseReceiver(id, rx)

	if p.opts.LockOSThread {
		runtime.LockOSThread()
		restore := p.pinThread(id)
		defer p.unlockThread(id, restore)
	}

	h.panicErr = p.work(id, rx)
}

// pinThread pins the locked thread of worker id when PinWorkers is set.
// It returns the function restoring the previous mask, or nil.
func (p *Pool) pinThread(id int) func() error {
	if !p.opts.PinWorkers {
		return nil
	}
	restore, err := PinToCPU(id % runtime.NumCPU())
	if err != nil {
		p.reportInternalError(fmt.Errorf("workerpool: pin worker %d: %w", id, err))
		return nil
	}
	return restore
}

// unlockThread hands the worker's thread back to the scheduler. A thread
// whose mask cannot be restored stays locked, so the runtime discards it
// when the goroutine exits.
func (p *Pool) unlockThread(id int, restore func() error) {
	if restore != nil {
		if err := restore(); err != nil {
			p.reportInternalError(fmt.Errorf("workerpool: unpin worker %d: %w", id, err))
			return
		}
	}
	runtime.UnlockOSThread()
}

// releaseReceiver drops the worker's receiver reference. When it was the
// last one, jobs still queued are discarded and taken off the queue gauge.
func (p *Pool) releaseReceiver(id int, rx *sharedReceiver) {
	if dropped := rx.release(); dropped > 0 {
		p.opts.Metrics.BatchDecQueued(int64(dropped))
		lg.FromContext(p.opts.Ctx).Warn("queued jobs dropped; no worker left",
			lg.Int("worker", id),
			lg.Int("dropped", dropped),
		)
	}
}

// work is the receive loop: Idle in recv, Running while a job executes,
// Terminated on a terminate message, a closed channel, or a job panic.
func (p *Pool) work(id int, rx *sharedReceiver) *WorkerPanicError {
	logger := lg.FromContext(p.opts.Ctx).With(lg.Int("worker", id))

	for {
		msg, err := rx.recv()
		if err != nil {
			logger.Error("Worker channel closed", lg.Any("error", err))
			p.reportInternalError(fmt.Errorf("workerpool: worker %d: %w", id, err))
			return nil
		}

		if msg.kind == terminate {
			logger.Info("Worker was told to terminate")
			return nil
		}

		p.opts.Metrics.BatchDecQueued(1)
		logger.Info("Worker got a job; executing")

		if perr := p.runJob(id, msg.job); perr != nil {
			logger.Error("job panicked; worker terminating",
				lg.Any("panic", perr.Value),
				lg.String("stack", string(perr.Stack)),
			)
			p.reportWorkerPanic(perr)
			return perr
		}
	}
}

func (p *Pool) runJob(id int, job Job) (perr *WorkerPanicError) {
	m := p.opts.Metrics
	m.AddActive(1)
	defer m.AddActive(-1)

	defer func() {
		if r := recover(); r != nil {
			m.IncPanicked()
			perr = &WorkerPanicError{WorkerID: id, Value: r, Stack: debug.Stack()}
		}
	}()

	job()
	m.IncExecuted()
	return nil
}
