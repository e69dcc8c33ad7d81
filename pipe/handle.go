// File: pipe/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"sync/atomic"

	"github.com/momentics/ringpipe/api"
)

// ref is satisfied by every handle kind and gives the rest of the package a
// uniform way to reach the shared pipe while still rejecting operations on
// an already-closed handle. It deliberately stays unexported: callers only
// ever see the concrete Bidirectional/Producer/Consumer types, never this
// interface, which is exactly what lets the type system — not a runtime
// tag — keep producers from popping and consumers from pushing.
type ref interface {
	acquire() (*pipe, error)
}

const (
	roleProducer = 1 << iota
	roleConsumer
)

// Bidirectional is a handle that counts as one producer and one consumer.
// It is the handle kind NewPipe returns. A single handle must not be used
// from more than one goroutine concurrently without external synchronization.
type Bidirectional struct {
	p      *pipe
	closed atomic.Bool
}

// Producer is a push-only handle. It counts as one producer.
type Producer struct {
	p      *pipe
	closed atomic.Bool
}

// Consumer is a pop-only handle. It counts as one consumer.
type Consumer struct {
	p      *pipe
	closed atomic.Bool
}

func (h *Bidirectional) acquire() (*pipe, error) {
	if h.closed.Load() {
		return nil, api.ErrClosedHandle
	}
	return h.p, nil
}

func (h *Producer) acquire() (*pipe, error) {
	if h.closed.Load() {
		return nil, api.ErrClosedHandle
	}
	return h.p, nil
}

func (h *Consumer) acquire() (*pipe, error) {
	if h.closed.Load() {
		return nil, api.ErrClosedHandle
	}
	return h.p, nil
}

// NewProducer mints a new Producer handle on the same underlying pipe as h,
// incrementing the producer refcount.
func NewProducer(h ref) (*Producer, error) {
	p, err := h.acquire()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.producerRefcount++
	p.mu.Unlock()
	DefaultRegistry.logEvent(p.id, eventNewProducer)
	return &Producer{p: p}, nil
}

// NewConsumer mints a new Consumer handle on the same underlying pipe as h,
// incrementing the consumer refcount.
func NewConsumer(h ref) (*Consumer, error) {
	p, err := h.acquire()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.consumerRefcount++
	p.mu.Unlock()
	DefaultRegistry.logEvent(p.id, eventNewConsumer)
	return &Consumer{p: p}, nil
}

// closeHandle decrements the refcounts named by role and, if the producer
// count just transitioned to zero, broadcasts so blocked consumers wake to
// observe end-of-stream. If both refcounts are now zero the pipe's buffer is
// dropped for garbage collection.
func closeHandle(p *pipe, role int) {
	p.mu.Lock()
	producersGoneNow := false
	consumersGoneNow := false
	if role&roleProducer != 0 {
		assertRefcountPositive(p.producerRefcount, "producer")
		p.producerRefcount--
		producersGoneNow = p.producerRefcount == 0
	}
	if role&roleConsumer != 0 {
		assertRefcountPositive(p.consumerRefcount, "consumer")
		p.consumerRefcount--
		consumersGoneNow = p.consumerRefcount == 0
	}
	dealloc := p.producerRefcount == 0 && p.consumerRefcount == 0
	if dealloc {
		p.buf = nil // release the backing array; handles are already closed
	}
	p.mu.Unlock()

	if producersGoneNow {
		p.cond.Broadcast()
		DefaultRegistry.logEvent(p.id, eventProducersGone)
	}
	if consumersGoneNow {
		DefaultRegistry.logEvent(p.id, eventConsumersGone)
	}
	if dealloc {
		DefaultRegistry.logEvent(p.id, eventClosed)
		DefaultRegistry.unregister(p.id)
	}
}

// Close releases this handle. It decrements both the producer and consumer
// refcounts. Closing an already-closed handle returns ErrClosedHandle.
func (h *Bidirectional) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return api.ErrClosedHandle
	}
	closeHandle(h.p, roleProducer|roleConsumer)
	return nil
}

// Close releases this producer handle, decrementing the producer refcount.
func (h *Producer) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return api.ErrClosedHandle
	}
	closeHandle(h.p, roleProducer)
	return nil
}

// Close releases this consumer handle, decrementing the consumer refcount.
func (h *Consumer) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return api.ErrClosedHandle
	}
	closeHandle(h.p, roleConsumer)
	return nil
}
