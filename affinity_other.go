//go:build !linux

package workerpool

func PinToCPU(cpu int) (restore func() error, err error) {
	return nil, ErrPinUnsupported
}
