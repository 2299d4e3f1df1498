package workerpool

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// cachePad is used to prevent false sharing between hot counters.
type cachePad = cpu.CacheLinePad

// MetricsPolicy defines hooks used by the worker pool to report
// queueing and execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncQueued increments the queued jobs counter. Called by Execute.
	IncQueued()

	// BatchDecQueued decrements the queued counter by n.
	//
	// Workers call it with n=1 each time they dequeue a job.
	BatchDecQueued(n int64)

	// AddActive adjusts the number of workers currently running a job.
	AddActive(delta int64)

	// IncExecuted increments the executed jobs counter. Jobs that panic
	// are counted by IncPanicked instead.
	IncExecuted()

	// IncPanicked increments the panicked jobs counter.
	IncPanicked()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	// executed is the total number of jobs that returned normally.
	executed atomic.Uint64
	_        cachePad

	// queued is the current number of jobs waiting in the channel.
	queued atomic.Int64
	_      cachePad

	active   atomic.Int64
	panicked atomic.Uint64
}

// Executed returns the total number of executed jobs.
func (m *AtomicMetrics) Executed() uint64 {
	return m.executed.Load()
}

// Queued returns the current number of queued jobs.
func (m *AtomicMetrics) Queued() int64 {
	return m.queued.Load()
}

// Active returns the number of workers currently running a job.
func (m *AtomicMetrics) Active() int64 {
	return m.active.Load()
}

// Panicked returns the number of jobs that panicked.
func (m *AtomicMetrics) Panicked() uint64 {
	return m.panicked.Load()
}

func (m *AtomicMetrics) IncExecuted() {
	m.executed.Add(1)
}

func (m *AtomicMetrics) IncQueued() {
	m.queued.Add(1)
}

func (m *AtomicMetrics) BatchDecQueued(n int64) {
	m.queued.Add(-n)
}

func (m *AtomicMetrics) AddActive(delta int64) {
	m.active.Add(delta)
}

func (m *AtomicMetrics) IncPanicked() {
	m.panicked.Add(1)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncQueued()             {}
func (m *NoopMetrics) BatchDecQueued(n int64) {}
func (m *NoopMetrics) AddActive(delta int64)  {}
func (m *NoopMetrics) IncExecuted()           {}
func (m *NoopMetrics) IncPanicked()           {}
