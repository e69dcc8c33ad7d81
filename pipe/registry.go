// File: pipe/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipe

import (
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"

	"github.com/momentics/ringpipe/api"
	"github.com/momentics/ringpipe/control"
	"github.com/momentics/ringpipe/internal/ring"
)

// event kinds recorded in a pipe's event log.
const (
	eventCreate         = "create"
	eventNewProducer    = "new-producer"
	eventNewConsumer    = "new-consumer"
	eventGrow           = "grow"
	eventShrink         = "shrink"
	eventProducersGone  = "producers-exhausted"
	eventConsumersGone  = "consumers-exhausted"
	eventClosed         = "closed"
)

// maxEventLogSize bounds the per-pipe event log; the oldest event is
// dropped once the log would grow past this size.
const maxEventLogSize = 64

// Event is one entry in a pipe's diagnostic event log.
type Event struct {
	Kind string
	At   time.Time
}

// Registry tracks every live pipe for introspection. It never participates
// in a pipe's own push/pop hot path: structural events (create, grow,
// shrink, producer exhaustion, close) are logged here, but routine
// push/pop counters live on the pipe itself (see stats.go) so the common
// case never needs the registry's lock.
type Registry struct {
	mu     sync.RWMutex
	pipes  map[uuid.UUID]*pipe
	events map[uuid.UUID]*queue.Queue

	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes
}

// DefaultRegistry is the process-wide registry every pipe created with
// NewPipe registers itself into.
var DefaultRegistry = newRegistry()

func newRegistry() *Registry {
	r := &Registry{
		pipes:   make(map[uuid.UUID]*pipe),
		events:  make(map[uuid.UUID]*queue.Queue),
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		probes:  control.NewDebugProbes(),
	}
	r.config.SetConfig(map[string]any{"default_min_cap": ring.DefaultMinCap})
	return r
}

func (r *Registry) register(p *pipe) {
	r.mu.Lock()
	r.pipes[p.id] = p
	r.events[p.id] = queue.New()
	r.mu.Unlock()

	id := p.id
	r.probes.RegisterProbe(fmt.Sprintf("pipe.%s.stats", id), func() any {
		p.mu.Lock()
		defer p.mu.Unlock()
		return snapshot(p)
	})
}

func (r *Registry) unregister(id uuid.UUID) {
	r.mu.Lock()
	delete(r.pipes, id)
	delete(r.events, id)
	r.mu.Unlock()
}

// logEvent appends a structural event to id's log, evicting the oldest
// entry once the log exceeds maxEventLogSize. It is only ever called from
// the rarer resize/lifecycle paths, never from the routine push/pop
// fast path.
func (r *Registry) logEvent(id uuid.UUID, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.events[id]
	if !ok {
		return
	}
	q.Add(Event{Kind: kind, At: time.Now()})
	for q.Length() > maxEventLogSize {
		q.Remove()
	}
	r.metrics.Set(fmt.Sprintf("pipe.%s.last_event", id), kind)
}

// EventLog returns a copy of id's recorded events, oldest first.
func (r *Registry) EventLog(id uuid.UUID) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.events[id]
	if !ok {
		return nil
	}
	out := make([]Event, q.Length())
	for i := range out {
		out[i] = q.Get(i).(Event)
	}
	return out
}

// LiveCount returns the number of pipes currently registered.
func (r *Registry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pipes)
}

// DumpState implements api.Debug: it runs every registered probe and
// returns the combined snapshot.
func (r *Registry) DumpState() map[string]any {
	return r.probes.DumpState()
}

// RegisterProbe implements api.Debug.
func (r *Registry) RegisterProbe(name string, fn func() any) {
	r.probes.RegisterProbe(name, fn)
}

// GetConfig implements api.Control.
func (r *Registry) GetConfig() map[string]any {
	return r.config.GetSnapshot()
}

// SetConfig implements api.Control.
func (r *Registry) SetConfig(cfg map[string]any) error {
	return r.config.SetConfig(cfg)
}

// Stats implements api.Control: it returns registry-wide metrics (not any
// one pipe's Stats, which is reached through the package-level Stats
// function instead).
func (r *Registry) Stats() map[string]any {
	snap := r.metrics.GetSnapshot()
	snap["live_pipes"] = r.LiveCount()
	return snap
}

// OnReload implements api.Control.
func (r *Registry) OnReload(fn func()) {
	r.config.OnReload(fn)
}

// RegisterDebugProbe implements api.Control.
func (r *Registry) RegisterDebugProbe(name string, fn func() any) {
	r.probes.RegisterProbe(name, fn)
}

var (
	_ api.Debug   = (*Registry)(nil)
	_ api.Control = (*Registry)(nil)
)
