package workerpool_test

import (
	"os"
	"runtime"
	"strconv"
	"testing"
	"time"

	wp "github.com/azargarov/threadpool"
)

func newTestPool(t *testing.T, workers int) *wp.Pool {
	t.Helper()

	p, err := wp.New(workers)
	if err != nil {
		t.Fatalf("New(%d): %v", workers, err)
	}
	return p
}

func newTestPoolFromOptions(t *testing.T, opts wp.Options) *wp.Pool {
	t.Helper()

	p, err := wp.NewFromOptions(opts)
	if err != nil {
		t.Fatalf("NewFromOptions(%+v): %v", opts, err)
	}
	return p
}

func mustClose(t *testing.T, p *wp.Pool) {
	t.Helper()

	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

// recoverPanic runs fn and returns the value it panicked with, or nil.
func recoverPanic(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

func waitUntilB(b *testing.B, timeout time.Duration, cond func() bool) {
	b.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	b.Fatal("condition not satisfied before timeout")
}

func percentile(samples []int64, q float64) time.Duration {
	pos := int(float64(len(samples)-1) * q)
	return time.Duration(samples[pos])
}

func getenvInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
