package workerpool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is the panic value of Execute once Close has been called.
	ErrPoolClosed = errors.New("workerpool: pool closed")

	// ErrNilJob is the panic value of Execute when given a nil Job.
	ErrNilJob = errors.New("workerpool: job is nil")

	// ErrPinUnsupported is returned by PinToCPU on platforms without
	// thread affinity support.
	ErrPinUnsupported = errors.New("workerpool: cpu pinning is not supported on this platform")
)

const msgInvalidSize = "pool size must be greater than zero"

// PoolCreationError is returned by New when the pool cannot be built.
type PoolCreationError struct {
	Message string
}

func (e *PoolCreationError) Error() string {
	return "workerpool: " + e.Message
}

// WorkerPanicError records a job panic that terminated a worker.
type WorkerPanicError struct {
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *WorkerPanicError) Error() string {
	return fmt.Sprintf("workerpool: worker %d panicked: %v", e.WorkerID, e.Value)
}

// Unwrap exposes the panic value when the job panicked with an error.
func (e *WorkerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// reportInternalError reports an internal pool error.
//
// Internal errors are non-job-related failures such as a worker pinning
// failure or a dispatch channel that closed without a terminate message.
// If no handler is registered, the error is silently ignored.
func (p *Pool) reportInternalError(e error) {
	if p.opts.OnInternalError != nil {
		p.opts.OnInternalError(e)
	}
}

// reportWorkerPanic reports a job panic that ended a worker.
func (p *Pool) reportWorkerPanic(err *WorkerPanicError) {
	if p.opts.OnWorkerPanic != nil {
		p.opts.OnWorkerPanic(err)
	}
}
