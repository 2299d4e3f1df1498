package workerpool

import (
	"testing"
)

func jobMsg(n int, out *[]int) controlMessage {
	return newJobMessage(func() { *out = append(*out, n) })
}

func drain(t *testing.T, q *fifoQueue) []int {
	t.Helper()

	var got []int
	for {
		m, ok := q.Pop()
		if !ok {
			return got
		}
		if m.kind != runJob {
			t.Fatalf("unexpected message kind %v", m.kind)
		}
		m.job()
	}
}

func TestFifoGrow_NoWrap(t *testing.T) {
	capacity := 4
	q := newFifoQueue(capacity)
	var got []int

	for i := 1; i <= capacity+1; i++ {
		q.Push(jobMsg(i, &got))
	}

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity, got %d", q.capacity)
	}
	if q.Len() != capacity+1 {
		t.Fatalf("after grow: expected size=%d, got %d", capacity+1, q.Len())
	}

	drain(t, q)
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("FIFO order broken: expected %d, got %d", i+1, v)
		}
	}
}

func TestFifoGrow_WithWrap(t *testing.T) {
	capacity := 4
	q := newFifoQueue(capacity)
	var got []int

	q.Push(jobMsg(1, &got))
	q.Push(jobMsg(2, &got))
	q.Push(jobMsg(3, &got))

	m, _ := q.Pop()
	m.job()

	// head=1 tail=3
	q.Push(jobMsg(4, &got))
	q.Push(jobMsg(5, &got))

	// full and wrapped: next push grows
	q.Push(jobMsg(6, &got))

	if q.capacity <= capacity {
		t.Fatalf("grow() didn't increase capacity")
	}
	if q.Len() != capacity+1 {
		t.Fatalf("expected size=%d after grow, got %d", capacity+1, q.Len())
	}

	drain(t, q)
	expected := []int{1, 2, 3, 4, 5, 6}
	if len(got) != len(expected) {
		t.Fatalf("got %v; want %v", got, expected)
	}
	for i, exp := range expected {
		if got[i] != exp {
			t.Fatalf("FIFO order broken at %d: expected %d, got %d", i, exp, got[i])
		}
	}
}

func TestFifoGrow_MultipleGrows(t *testing.T) {
	size := 500
	q := newFifoQueue(4)
	var got []int

	for i := 1; i <= size; i++ {
		q.Push(jobMsg(i, &got))
	}
	if q.Len() != size {
		t.Fatalf("expected size %d, got %d", size, q.Len())
	}

	drain(t, q)
	for i := 1; i <= size; i++ {
		if got[i-1] != i {
			t.Fatalf("FIFO mismatch at %d: expected %d, got %d", i, i, got[i-1])
		}
	}
}

func TestFifoPop_Empty(t *testing.T) {
	q := newFifoQueue(0)
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned true")
	}
	q.Push(newTerminateMessage())
	m, ok := q.Pop()
	if !ok || m.kind != terminate {
		t.Fatalf("got (%v, %v); want terminate", m.kind, ok)
	}
}
