package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/rtcengine/internal/app/orch"
	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNoEngineFactory = errors.New("engine factory is nil")

// EngineFactory builds one engine bound to sink.
type EngineFactory func(cfg orch.Config, sink core.EventSink) (*orch.Orchestrator, error)

// Boundary is the handle-scoped command surface offered to the host. Every
// command on an unknown handle is logged and answered with CodeInvalidHandle
// or false.
type Boundary struct {
	Registry *Registry
	Factory  EngineFactory
}

func NewBoundary(reg *Registry, factory EngineFactory) *Boundary {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Boundary{Registry: reg, Factory: factory}
}

// Create parses configText and registers a new engine.
func (b *Boundary) Create(configText string, sink core.EventSink) (Handle, error) {
	if b.Factory == nil {
		return 0, ErrNoEngineFactory
	}
	cfg := orch.FromConfigText(configText)
	e, err := b.Factory(cfg, sink)
	if err != nil {
		log.Error().Err(err).Str("module", "app.boundary").Msg("create engine")
		return 0, fmt.Errorf("create engine: %w", err)
	}
	return b.Registry.Add(e), nil
}

// Destroy unregisters h and closes its engine outside the registry lock.
func (b *Boundary) Destroy(h Handle) bool {
	e, ok := b.Registry.Remove(h)
	if !ok {
		return false
	}
	e.Close()
	return true
}

func (b *Boundary) resolve(h Handle, op string) (*orch.Orchestrator, bool) {
	e, ok := b.Registry.Resolve(h)
	if !ok {
		log.Warn().Str("module", "app.boundary").Int64("handle", int64(h)).Str("op", op).Msg("unknown handle")
	}
	return e, ok
}

func (b *Boundary) JoinChannel(ctx context.Context, h Handle, token, channel, userID string) domain.ResultCode {
	e, ok := b.resolve(h, "join_channel")
	if !ok {
		return domain.CodeInvalidHandle
	}
	return e.JoinChannel(ctx, token, channel, userID)
}

func (b *Boundary) LeaveChannel(h Handle) domain.ResultCode {
	e, ok := b.resolve(h, "leave_channel")
	if !ok {
		return domain.CodeInvalidHandle
	}
	return e.LeaveChannel()
}

func (b *Boundary) SetupLocalVideo(h Handle, surface domain.Surface) bool {
	e, ok := b.resolve(h, "setup_local_video")
	return ok && e.SetupLocalVideo(surface) == nil
}

func (b *Boundary) SetupRemoteVideo(h Handle, surface domain.Surface, userID string) bool {
	e, ok := b.resolve(h, "setup_remote_video")
	return ok && e.SetupRemoteVideo(surface, userID) == nil
}

func (b *Boundary) MuteLocalAudio(h Handle, muted bool) bool {
	e, ok := b.resolve(h, "mute_local_audio")
	return ok && e.MuteLocalAudio(muted) == nil
}

func (b *Boundary) EnableLocalVideo(h Handle, enabled bool) bool {
	e, ok := b.resolve(h, "enable_local_video")
	return ok && e.EnableLocalVideo(enabled) == nil
}

// SetSink rebinds the event sink of h.
func (b *Boundary) SetSink(h Handle, sink core.EventSink) bool {
	e, ok := b.resolve(h, "set_sink")
	if ok {
		e.SetSink(sink)
	}
	return ok
}

// EngineStatus is a point-in-time view of one engine.
type EngineStatus struct {
	Handle    Handle `json:"handle"`
	State     string `json:"state"`
	StateCode int    `json:"stateCode"`
	Channel   string `json:"channel,omitempty"`
	UserID    string `json:"userId,omitempty"`
	InChannel bool   `json:"inChannel"`
}

func (b *Boundary) Status(h Handle) (EngineStatus, bool) {
	e, ok := b.resolve(h, "status")
	if !ok {
		return EngineStatus{}, false
	}
	st := e.ConnectionState()
	m := e.Membership()
	return EngineStatus{
		Handle:    h,
		State:     st.String(),
		StateCode: int(st),
		Channel:   m.Channel,
		UserID:    m.UserID,
		InChannel: !m.Empty(),
	}, true
}

// Close destroys every registered engine.
func (b *Boundary) Close() {
	for _, h := range b.Registry.Handles() {
		b.Destroy(h)
	}
}
