//go:build linux

package workerpool

import (
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to a single CPU and returns a
// function that puts the previous mask back. The caller must hold
// runtime.LockOSThread until restore has run.
func PinToCPU(cpu int) (restore func() error, err error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, err
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return nil, err
	}
	return func() error { return unix.SchedSetaffinity(0, &prev) }, nil
}
