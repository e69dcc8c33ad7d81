// File: pipe/push.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import "github.com/momentics/ringpipe/api"

// pushImpl appends count records read from src to p, growing the backing
// buffer if necessary, then broadcasts p.cond. The broadcast happens
// after the lock is released to minimise the window in which woken
// consumers find the mutex still held.
func pushImpl(p *pipe, src []byte, count int) error {
	if src == nil {
		return api.ErrNilBuffer
	}
	if count == 0 {
		return nil
	}

	p.mu.Lock()
	capBefore := p.buf.Capacity()
	p.buf.Push(src, uint64(count))
	capAfter := p.buf.Capacity()
	p.stats.totalPushed.Add(uint64(count))
	p.mu.Unlock()

	p.cond.Broadcast()

	if capAfter > capBefore {
		p.stats.totalGrows.Add(1)
		DefaultRegistry.logEvent(p.id, eventGrow)
	}
	return nil
}

// Push appends count elemSize-sized records read from src to the pipe.
// The push of count records is atomic: no other producer's records can be
// interleaved within it.
func (h *Producer) Push(src []byte, count int) error {
	p, err := h.acquire()
	if err != nil {
		return err
	}
	return pushImpl(p, src, count)
}

// Push appends count elemSize-sized records read from src to the pipe.
func (h *Bidirectional) Push(src []byte, count int) error {
	p, err := h.acquire()
	if err != nil {
		return err
	}
	return pushImpl(p, src, count)
}
