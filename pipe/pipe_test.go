// File: pipe/pipe_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/ringpipe/api"
)

func TestNewPipeRejectsZeroElemSize(t *testing.T) {
	if _, err := NewPipe(0); !errors.Is(err, api.ErrInvalidElemSize) {
		t.Fatalf("expected ErrInvalidElemSize, got %v", err)
	}
}

func TestRoundTripSingleThreaded(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	src := []byte("HELLO")
	if err := h.Push(src, len(src)); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, len(src))
	n, err := h.Pop(out, len(src))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(src) {
		t.Fatalf("expected %d popped, got %d", len(src), n)
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("round trip mismatch: got %q want %q", out, src)
	}

	st, err := Stats(h)
	if err != nil {
		t.Fatal(err)
	}
	if st.ElemCount != 0 {
		t.Fatalf("expected empty pipe, elemCount=%d", st.ElemCount)
	}
}

func TestForcedWrap(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	first := make([]byte, 30)
	for i := range first {
		first[i] = byte(i)
	}
	if err := h.Push(first, 30); err != nil {
		t.Fatal(err)
	}

	popped := make([]byte, 20)
	if _, err := h.Pop(popped, 20); err != nil {
		t.Fatal(err)
	}

	second := make([]byte, 20)
	for i := range second {
		second[i] = byte(0x1E + i)
	}
	if err := h.Push(second, 20); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, 30)
	n, err := h.Pop(out, 30)
	if err != nil {
		t.Fatal(err)
	}
	if n != 30 {
		t.Fatalf("expected 30 popped, got %d", n)
	}

	want := make([]byte, 30)
	for i := range want {
		want[i] = byte(0x14 + i)
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("wrap mismatch: got %v want %v", out, want)
	}
}

func TestForcedGrowth(t *testing.T) {
	h, err := NewPipe(4)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := Reserve(h, 2); err != nil {
		t.Fatal(err)
	}

	data := make([]byte, 10*4)
	for i := 0; i < 10; i++ {
		data[i*4] = byte(i)
	}
	if err := h.Push(data, 10); err != nil {
		t.Fatal(err)
	}

	st, err := Stats(h)
	if err != nil {
		t.Fatal(err)
	}
	if st.Capacity != 16 {
		t.Fatalf("expected capacity 16 after growth, got %d", st.Capacity)
	}

	out := make([]byte, 10*4)
	n, err := h.Pop(out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Fatalf("expected 10 popped, got %d", n)
	}
	for i := 0; i < 10; i++ {
		if out[i*4] != byte(i) {
			t.Fatalf("record %d corrupted: got %d want %d", i, out[i*4], i)
		}
	}
}

func TestShrinkNeverBelowMinCapOrElemCount(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := Reserve(h, 2); err != nil {
		t.Fatal(err)
	}

	push := make([]byte, 100)
	if err := h.Push(push, 100); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, 98)
	if _, err := h.Pop(out, 98); err != nil {
		t.Fatal(err)
	}

	st, err := Stats(h)
	if err != nil {
		t.Fatal(err)
	}
	if st.Capacity < 2 {
		t.Fatalf("capacity must never drop below minCap=2, got %d", st.Capacity)
	}
	if st.Capacity < st.ElemCount {
		t.Fatalf("capacity %d below elemCount %d", st.Capacity, st.ElemCount)
	}
}

func TestEndOfStreamSignalling(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := NewConsumer(h)
	if err != nil {
		t.Fatal(err)
	}
	defer consumer.Close()

	done := make(chan struct{})
	var n int
	var popErr error
	go func() {
		out := make([]byte, 10)
		n, popErr = consumer.Pop(out, 10)
		close(done)
	}()

	// give the consumer time to park on the condition variable before the
	// last producer departs.
	time.Sleep(20 * time.Millisecond)
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not wake on producer exhaustion")
	}

	if popErr != nil {
		t.Fatal(popErr)
	}
	if n != 0 {
		t.Fatalf("expected 0 records on end-of-stream, got %d", n)
	}
}

func TestMultiProducerAtomicity(t *testing.T) {
	const (
		recordSize = 256
		producers  = 4
	)

	h, err := NewPipe(recordSize)
	if err != nil {
		t.Fatal(err)
	}

	handles := make([]*Producer, producers)
	for i := range handles {
		p, err := NewProducer(h)
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = p
	}

	var wg sync.WaitGroup
	for i, p := range handles {
		wg.Add(1)
		go func(i int, p *Producer) {
			defer wg.Done()
			rec := make([]byte, recordSize)
			for j := range rec {
				rec[j] = byte(i)
			}
			if err := p.Push(rec, 1); err != nil {
				t.Error(err)
			}
			if err := p.Close(); err != nil {
				t.Error(err)
			}
		}(i, p)
	}
	wg.Wait()

	// Pop the four concurrently pushed records and verify each is whole
	// (no interleaving) and that every producer's record arrived.
	concurrentSeen := make(map[byte]bool)
	for i := 0; i < producers; i++ {
		out := make([]byte, recordSize)
		n, err := h.Pop(out, 1)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1 record, got %d", n)
		}
		tag := out[0]
		for _, b := range out {
			if b != tag {
				t.Fatalf("concurrent record %d corrupted mid-record: %v", i, out)
			}
		}
		concurrentSeen[tag] = true
	}
	if len(concurrentSeen) != producers {
		t.Fatalf("expected %d distinct producer tags, saw %d", producers, len(concurrentSeen))
	}

	if err := h.Close(); err != nil {
		// h still holds one producer+one consumer ref; closing it after
		// the producer handles is fine since Bidirectional counts
		// separately.
		t.Fatal(err)
	}

	// Repeat the uniformity check on a second pipe instance built the same
	// way but driven synchronously.
	h2, err := NewPipe(recordSize)
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Close()
	for i := 0; i < producers; i++ {
		rec := make([]byte, recordSize)
		for j := range rec {
			rec[j] = byte(i)
		}
		if err := h2.Push(rec, 1); err != nil {
			t.Fatal(err)
		}
	}
	seen := make(map[byte]bool)
	for i := 0; i < producers; i++ {
		out := make([]byte, recordSize)
		n, err := h2.Pop(out, 1)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1 record, got %d", n)
		}
		tag := out[0]
		for _, b := range out {
			if b != tag {
				t.Fatalf("record %d corrupted mid-record: %v", i, out)
			}
		}
		seen[tag] = true
	}
	if len(seen) != producers {
		t.Fatalf("expected %d distinct producer tags, saw %d", producers, len(seen))
	}
}

func TestPopContextCancellation(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var n int
	var popErr error
	go func() {
		out := make([]byte, 10)
		n, popErr = h.PopContext(ctx, out, 10)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PopContext did not wake on cancellation")
	}

	if !errors.Is(popErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", popErr)
	}
	if n != 0 {
		t.Fatalf("expected 0 records, got %d", n)
	}
}

func TestPopEagerOnEmptyPipe(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	out := make([]byte, 10)
	n, err := h.PopEager(out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 records from empty eager pop, got %d", n)
	}
}

func TestClosedHandleRejectsOperations(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Push([]byte("x"), 1); !errors.Is(err, api.ErrClosedHandle) {
		t.Fatalf("expected ErrClosedHandle, got %v", err)
	}
	if err := h.Close(); !errors.Is(err, api.ErrClosedHandle) {
		t.Fatalf("expected ErrClosedHandle on double close, got %v", err)
	}
}

func TestNilBufferRejected(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := h.Push(nil, 1); !errors.Is(err, api.ErrNilBuffer) {
		t.Fatalf("expected ErrNilBuffer from Push, got %v", err)
	}
	if _, err := h.Pop(nil, 1); !errors.Is(err, api.ErrNilBuffer) {
		t.Fatalf("expected ErrNilBuffer from Pop, got %v", err)
	}
}

func TestDiagnosticsSnapshotConsistency(t *testing.T) {
	h, err := NewPipe(4)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	data := make([]byte, 40*4)
	if err := h.Push(data, 40); err != nil {
		t.Fatal(err)
	}

	st, err := Stats(h)
	if err != nil {
		t.Fatal(err)
	}
	if st.ElemCount > st.Capacity {
		t.Fatalf("elemCount %d exceeds capacity %d", st.ElemCount, st.Capacity)
	}
	if st.Capacity&(st.Capacity-1) != 0 {
		t.Fatalf("capacity %d is not a power of two", st.Capacity)
	}
	if st.TotalPushed != 40 {
		t.Fatalf("expected totalPushed=40, got %d", st.TotalPushed)
	}

	events := DefaultRegistry.EventLog(h.p.id)
	sawGrow := false
	for _, ev := range events {
		if ev.Kind == eventGrow {
			sawGrow = true
		}
	}
	if !sawGrow {
		t.Fatal("expected a grow event after pushing past default min capacity growth threshold")
	}
}

func TestSplitHandlesShareOnePipe(t *testing.T) {
	h, err := NewPipe(1)
	if err != nil {
		t.Fatal(err)
	}
	producer, err := NewProducer(h)
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := NewConsumer(h)
	if err != nil {
		t.Fatal(err)
	}

	if err := producer.Push([]byte("hi"), 2); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 2)
	n, err := consumer.Pop(out, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || !bytes.Equal(out, []byte("hi")) {
		t.Fatalf("expected round trip through split handles, got %q", out)
	}

	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
	if err := consumer.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
}
