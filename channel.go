package workerpool

import (
	"errors"
	"sync"
)

var (
	// errChannelClosed is returned by recv once every sender has been
	// released and the queue is drained.
	errChannelClosed = errors.New("workerpool: dispatch channel closed")

	// errDisconnected is returned by send once the receiver has been released.
	errDisconnected = errors.New("workerpool: dispatch channel has no receiver")
)

// channelState is the storage shared by the two ends of a dispatch channel.
//
// Synchronization strategy:
//   - mu guards the ring and both reference counts
//   - nonEmpty is signalled on every push and on close
type channelState struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	queue    *fifoQueue

	senders  int
	receiver bool
}

// sender is a producer handle. Handles are cheap to clone and safe to use
// from any number of goroutines.
type sender struct {
	st       *channelState
	released bool
	mu       sync.Mutex
}

// receiver is the single consumer end. It must not be used by more than
// one goroutine at a time; wrap it in a sharedReceiver for that.
type receiver struct {
	st *channelState
}

// newChannel creates an unbounded multi-producer, single-consumer channel.
func newChannel() (*sender, *receiver) {
	st := &channelState{
		queue:    newFifoQueue(initialFifoCapacity),
		senders:  1,
		receiver: true,
	}
	st.nonEmpty = sync.NewCond(&st.mu)
	return &sender{st: st}, &receiver{st: st}
}

// send enqueues m without blocking.
func (s *sender) send(m controlMessage) error {
	st := s.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.receiver {
		return errDisconnected
	}
	st.queue.Push(m)
	st.nonEmpty.Signal()
	return nil
}

// clone returns a new producer handle on the same channel.
func (s *sender) clone() *sender {
	s.st.mu.Lock()
	s.st.senders++
	s.st.mu.Unlock()
	return &sender{st: s.st}
}

// release drops this handle. The channel closes when the last sender is
// released. Releasing twice is a no-op.
func (s *sender) release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	st := s.st
	st.mu.Lock()
	st.senders--
	if st.senders == 0 {
		st.nonEmpty.Broadcast()
	}
	st.mu.Unlock()
}

// recv blocks until a message is available. Buffered messages are still
// delivered after the channel closes; errChannelClosed is returned only
// once the queue is empty.
func (r *receiver) recv() (controlMessage, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	for {
		if m, ok := st.queue.Pop(); ok {
			return m, nil
		}
		if st.senders == 0 {
			return controlMessage{}, errChannelClosed
		}
		st.nonEmpty.Wait()
	}
}

// release drops the consumer end; pending and future sends fail. It
// returns how many buffered jobs were discarded.
func (r *receiver) release() int {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	st.receiver = false
	dropped := 0
	for {
		m, ok := st.queue.Pop()
		if !ok {
			return dropped
		}
		if m.kind == runJob {
			dropped++
		}
	}
}

// len reports how many messages are buffered.
func (r *receiver) len() int {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.queue.Len()
}

// sharedReceiver lets several workers consume from one receiver.
//
// Every recv is a single lock → dequeue → unlock step, so no two workers
// ever observe the same message. The lock is never held while a job runs.
type sharedReceiver struct {
	core *sharedCore
}

type sharedCore struct {
	mu   sync.Mutex
	rx   *receiver
	refs int
	refM sync.Mutex
}

func newSharedReceiver(rx *receiver) *sharedReceiver {
	return &sharedReceiver{core: &sharedCore{rx: rx, refs: 1}}
}

func (s *sharedReceiver) recv() (controlMessage, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return s.core.rx.recv()
}

// clone hands out another reference to the same receiver.
func (s *sharedReceiver) clone() *sharedReceiver {
	s.core.refM.Lock()
	s.core.refs++
	s.core.refM.Unlock()
	return &sharedReceiver{core: s.core}
}

// release drops one reference. The underlying receiver is released
// together with the last reference, and the number of discarded jobs is
// returned from that call only.
func (s *sharedReceiver) release() int {
	c := s.core
	c.refM.Lock()
	c.refs--
	last := c.refs == 0
	c.refM.Unlock()

	if last {
		return c.rx.release()
	}
	return 0
}
