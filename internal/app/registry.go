package app

import (
	"slices"
	"sync"

	"github.com/dkeye/rtcengine/internal/app/orch"
	"github.com/rs/zerolog/log"
)

// Handle identifies one engine instance across the host boundary. Handles
// start at 1 and are never reused; zero is never a valid handle.
type Handle int64

type engineEntry struct {
	Engine *orch.Orchestrator
}

// Registry maps handles to engines. Its lock is never held while calling into
// an engine.
type Registry struct {
	mu      sync.RWMutex
	next    Handle
	engines map[Handle]*engineEntry
}

func NewRegistry() *Registry {
	return &Registry{
		next:    1,
		engines: make(map[Handle]*engineEntry),
	}
}

// Add stores e under a fresh handle.
func (r *Registry) Add(e *orch.Orchestrator) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.engines[h] = &engineEntry{Engine: e}
	log.Info().Str("module", "app.registry").Int64("handle", int64(h)).Msg("registered engine")
	return h
}

func (r *Registry) Resolve(h Handle) (*orch.Orchestrator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.engines[h]; ok {
		return e.Engine, true
	}
	return nil, false
}

// Remove deletes h and returns the engine it held. Removing an unknown handle
// is logged and reported as false.
func (r *Registry) Remove(h Handle) (*orch.Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[h]
	if !ok {
		log.Warn().Str("module", "app.registry").Int64("handle", int64(h)).Msg("remove unknown handle")
		return nil, false
	}
	delete(r.engines, h)
	log.Info().Str("module", "app.registry").Int64("handle", int64(h)).Msg("unregistered engine")
	return e.Engine, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// Handles returns the live handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	out := make([]Handle, 0, len(r.engines))
	for h := range r.engines {
		out = append(out, h)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}
