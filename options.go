package workerpool

import (
	"context"
)

// Options configure a worker Pool.
//
// Zero values other than Workers are replaced with defaults in FillDefaults.
// Workers is never defaulted: a pool of zero workers is a construction error.
type Options struct {
	// Workers is the fixed number of workers. Must be positive.
	Workers int

	// Ctx carries the logger used for pool diagnostics. Defaults to
	// context.Background().
	Ctx context.Context

	// Metrics receives queue and execution events. Defaults to NoopMetrics.
	Metrics MetricsPolicy

	// LockOSThread wires every worker goroutine to its own OS thread
	// for the worker's whole lifetime.
	LockOSThread bool

	// PinWorkers additionally restricts worker i to CPU i modulo NumCPU.
	// Implies LockOSThread. Linux only; elsewhere the failure is reported
	// through OnInternalError and the worker runs unpinned.
	PinWorkers bool

	// OnWorkerPanic is called from the dying worker when a job panics.
	OnWorkerPanic func(err *WorkerPanicError)

	// OnInternalError is called for failures that are not caused by a job.
	OnInternalError func(err error)
}

func (o *Options) FillDefaults() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.PinWorkers {
		o.LockOSThread = true
	}
}
