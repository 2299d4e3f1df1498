// Package workerpool provides a fixed-size worker pool with deterministic,
// leak-free shutdown.
//
// Architecture overview
//
// The pool is composed of three small layers:
//
//  1. Dispatch channel
//     An unbounded multi-producer queue of control messages. Each message
//     is either a job to run or a terminate request. The single consumer
//     end is shared by all workers behind a mutex, so every receive is one
//     lock → dequeue → unlock step and no two workers see the same message.
//
//  2. Workers
//     A fixed number of long-lived goroutines, created once by New. Each
//     worker blocks in receive, runs the job it dequeued, and goes back to
//     receive. It stops after dequeuing a terminate message.
//
//  3. Pool lifecycle
//     Execute wraps a job and sends it without blocking. Close queues one
//     terminate message per worker behind any pending jobs, then joins the
//     workers one by one in id order.
//
// Ordering
//
// Messages from one producer are delivered in submission order. A pool of
// size one therefore runs a single caller's jobs strictly in order. Jobs
// submitted concurrently by different callers have no relative order.
//
// Error handling
//
// The pool distinguishes three classes of failure:
//
//   - Construction errors: a non-positive size returns *PoolCreationError.
//   - Programming errors: Execute on a closed pool, or with a nil job, panics.
//   - Job panics: the panic is recovered, the worker that ran the job stops
//     taking work, and Close returns the panic as *WorkerPanicError.
//
// A panicking job permanently costs the pool one worker. Build a new pool
// to regain capacity.
//
// OS threads and CPU pinning
//
// With Options.LockOSThread every worker goroutine is locked to its own OS
// thread. On Linux, Options.PinWorkers further restricts worker i to a
// single CPU. This can improve cache locality for CPU-bound jobs but is not
// universally beneficial.
package workerpool
