package host

import (
	"sync"

	"github.com/dkeye/rtcengine/internal/app"
)

// Hub owns the stream sink of every engine created through the HTTP surface.
type Hub struct {
	policy app.Policy
	buffer int

	mu    sync.RWMutex
	sinks map[app.Handle]*StreamSink
}

func NewHub(policy app.Policy, buffer int) *Hub {
	return &Hub{
		policy: policy,
		buffer: buffer,
		sinks:  make(map[app.Handle]*StreamSink),
	}
}

// NewSink returns an unbound sink. Call Bind once the engine has a handle.
func (h *Hub) NewSink() *StreamSink {
	return NewStreamSink(h.policy, h.buffer)
}

func (h *Hub) Bind(handle app.Handle, s *StreamSink) {
	s.Bind(handle)
	h.mu.Lock()
	h.sinks[handle] = s
	h.mu.Unlock()
}

func (h *Hub) Sink(handle app.Handle) (*StreamSink, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sinks[handle]
	return s, ok
}

// Drop forgets handle and closes its subscribers.
func (h *Hub) Drop(handle app.Handle) {
	h.mu.Lock()
	s, ok := h.sinks[handle]
	delete(h.sinks, handle)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}
