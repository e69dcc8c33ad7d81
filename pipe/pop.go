// File: pipe/pop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"context"

	"github.com/momentics/ringpipe/api"
)

// popLocked pops up to count records into target, mirroring the source's
// "only touch the buffer if there's something in it" shortcut: an empty
// buffer returns 0 without running the shrink-resize check at all. Caller
// must already hold p.mu.
func popLocked(p *pipe, target []byte, count int) uint64 {
	if p.buf.ElemCount() == 0 {
		return 0
	}
	return p.buf.Pop(target, uint64(count))
}

func noteShrink(p *pipe, capBefore, capAfter uint64) {
	if capAfter < capBefore {
		p.stats.totalShrinks.Add(1)
		DefaultRegistry.logEvent(p.id, eventShrink)
	}
}

// popImpl blocks until at least count records are available or every
// producer handle has been closed, then pops whatever is available (which
// may be fewer than count, including zero, once producers are exhausted).
func popImpl(p *pipe, target []byte, count int) (int, error) {
	if target == nil {
		return 0, api.ErrNilBuffer
	}
	if count == 0 {
		return 0, nil
	}

	p.mu.Lock()
	for uint64(count) > p.buf.ElemCount() && p.producerRefcount > 0 {
		p.cond.Wait()
	}
	capBefore := p.buf.Capacity()
	n := popLocked(p, target, count)
	capAfter := p.buf.Capacity()
	p.stats.totalPopped.Add(n)
	p.mu.Unlock()

	noteShrink(p, capBefore, capAfter)
	return int(n), nil
}

// popEagerImpl returns immediately with up to count records already
// available, never waiting. It returns 0 on an empty pipe, which — combined
// with a zero producer refcount — signals permanent end-of-stream.
func popEagerImpl(p *pipe, target []byte, count int) (int, error) {
	if target == nil {
		return 0, api.ErrNilBuffer
	}
	if count == 0 {
		return 0, nil
	}

	p.mu.Lock()
	capBefore := p.buf.Capacity()
	n := popLocked(p, target, count)
	capAfter := p.buf.Capacity()
	p.stats.totalPopped.Add(n)
	p.mu.Unlock()

	noteShrink(p, capBefore, capAfter)
	return int(n), nil
}

// popContextImpl behaves like popImpl, but also wakes and returns
// ctx.Err() if ctx is cancelled before enough records arrive or producers
// are exhausted. It never changes the FIFO or refcount semantics of the
// blocking pop; cancellation is simply a third wake reason alongside "enough
// records" and "producers exhausted".
func popContextImpl(ctx context.Context, p *pipe, target []byte, count int) (int, error) {
	if target == nil {
		return 0, api.ErrNilBuffer
	}
	if count == 0 {
		return 0, nil
	}

	// Wake the waiter if ctx is cancelled while it's parked on p.cond; this
	// goroutine exits as soon as either ctx is done or the pop returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-done:
		}
	}()

	p.mu.Lock()
	for uint64(count) > p.buf.ElemCount() && p.producerRefcount > 0 {
		if err := ctx.Err(); err != nil {
			capBefore := p.buf.Capacity()
			n := popLocked(p, target, count)
			capAfter := p.buf.Capacity()
			p.stats.totalPopped.Add(n)
			p.mu.Unlock()
			noteShrink(p, capBefore, capAfter)
			return int(n), err
		}
		p.cond.Wait()
	}

	capBefore := p.buf.Capacity()
	n := popLocked(p, target, count)
	capAfter := p.buf.Capacity()
	p.stats.totalPopped.Add(n)
	p.mu.Unlock()

	noteShrink(p, capBefore, capAfter)
	return int(n), nil
}

// Pop blocks until at least count records are available or every producer
// handle on this pipe has been closed. It returns min(count, available); a
// return of 0 means the pipe is empty and producers are exhausted.
func (h *Consumer) Pop(target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popImpl(p, target, count)
}

// Pop blocks until at least count records are available or every producer
// handle on this pipe has been closed.
func (h *Bidirectional) Pop(target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popImpl(p, target, count)
}

// PopEager returns immediately with up to count records already available,
// never blocking. It returns 0 if the pipe is currently empty.
func (h *Consumer) PopEager(target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popEagerImpl(p, target, count)
}

// PopEager returns immediately with up to count records already available.
func (h *Bidirectional) PopEager(target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popEagerImpl(p, target, count)
}

// PopContext behaves like Pop, but also returns ctx.Err() if ctx is
// cancelled before the pop is satisfied.
func (h *Consumer) PopContext(ctx context.Context, target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popContextImpl(ctx, p, target, count)
}

// PopContext behaves like Pop, but also returns ctx.Err() if ctx is
// cancelled before the pop is satisfied.
func (h *Bidirectional) PopContext(ctx context.Context, target []byte, count int) (int, error) {
	p, err := h.acquire()
	if err != nil {
		return 0, err
	}
	return popContextImpl(ctx, p, target, count)
}
