// File: pipe/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/ringpipe/internal/ring"
)

// pipe is the single shared object reached through Bidirectional, Producer,
// and Consumer handles. All fields are guarded by mu; cond is signalled
// whenever new records become available or the last producer departs.
type pipe struct {
	id uuid.UUID

	mu   sync.Mutex
	cond *sync.Cond
	buf  *ring.Buffer

	producerRefcount int
	consumerRefcount int

	stats stats
}

// newPipe allocates a pipe with both refcounts at 1, matching the rule that
// the handle returned by NewPipe counts as both a producer and a consumer.
func newPipe(elemSize uint64) (*pipe, error) {
	buf, err := ring.New(elemSize)
	if err != nil {
		return nil, err
	}
	p := &pipe{
		id:               uuid.New(),
		buf:              buf,
		producerRefcount: 1,
		consumerRefcount: 1,
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// NewPipe allocates a new pipe and returns a Bidirectional handle to it.
// It fails only if elemSize is zero.
func NewPipe(elemSize uint64) (*Bidirectional, error) {
	p, err := newPipe(elemSize)
	if err != nil {
		return nil, err
	}
	DefaultRegistry.register(p)
	DefaultRegistry.logEvent(p.id, eventCreate)
	return &Bidirectional{p: p}, nil
}
