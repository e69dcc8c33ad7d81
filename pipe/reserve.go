// File: pipe/reserve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

// Reserve sets a pipe's minimum capacity to n and, if n exceeds the current
// element count, resizes the buffer to n immediately (growing or shrinking
// it). n == 0 resets the minimum capacity to the default. Capacity changes
// are recorded as grow/shrink events. Reserve works through any handle kind.
func Reserve(h ref, n uint64) error {
	p, err := h.acquire()
	if err != nil {
		return err
	}
	p.mu.Lock()
	capBefore := p.buf.Capacity()
	p.buf.Reserve(n)
	capAfter := p.buf.Capacity()
	p.mu.Unlock()

	if capAfter > capBefore {
		p.stats.totalGrows.Add(1)
		DefaultRegistry.logEvent(p.id, eventGrow)
	}
	noteShrink(p, capBefore, capAfter)
	return nil
}
