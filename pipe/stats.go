// File: pipe/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// stats holds the per-pipe counters surfaced by Stats(). Each counter sits
// on its own cache line so that a reader snapshotting one counter on one
// core never bounces the cache line a writer on another core is touching
// for a different counter. totalPushed and totalPopped are bumped while the
// pipe's own lock is already held; totalGrows and totalShrinks are bumped
// just after it is released. Being atomics, none of them adds a lock
// acquisition to the hot path.
type stats struct {
	totalPushed  atomic.Uint64
	_            cpu.CacheLinePad
	totalPopped  atomic.Uint64
	_            cpu.CacheLinePad
	totalGrows   atomic.Uint64
	_            cpu.CacheLinePad
	totalShrinks atomic.Uint64
	_            cpu.CacheLinePad
}

// StatsSnapshot is a point-in-time, lock-protected snapshot of a pipe's state.
type StatsSnapshot struct {
	ElemSize         uint64
	Capacity         uint64
	MinCap           uint64
	ElemCount        uint64
	ProducerRefcount int
	ConsumerRefcount int
	TotalPushed      uint64
	TotalPopped      uint64
	TotalGrows       uint64
	TotalShrinks     uint64
}

// snapshot builds a Stats value while p.mu is held. Callers that already
// have the *pipe (the registry) use it directly; external callers go
// through the exported Stats function, which first validates the handle.
func snapshot(p *pipe) StatsSnapshot {
	s := StatsSnapshot{
		ProducerRefcount: p.producerRefcount,
		ConsumerRefcount: p.consumerRefcount,
		TotalPushed:      p.stats.totalPushed.Load(),
		TotalPopped:      p.stats.totalPopped.Load(),
		TotalGrows:       p.stats.totalGrows.Load(),
		TotalShrinks:     p.stats.totalShrinks.Load(),
	}
	if p.buf != nil {
		s.ElemSize = p.buf.ElemSize()
		s.Capacity = p.buf.Capacity()
		s.MinCap = p.buf.MinCap()
		s.ElemCount = p.buf.ElemCount()
	}
	return s
}

// Stats returns a snapshot of the pipe reached through h.
func Stats(h ref) (StatsSnapshot, error) {
	p, err := h.acquire()
	if err != nil {
		return StatsSnapshot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return snapshot(p), nil
}
