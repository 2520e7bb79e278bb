// Package orch owns one communication session per Orchestrator: the
// connection state machine, channel membership, the negotiator, the
// background worker and the events shaped for the host sink.
package orch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/rtcengine/internal/app/dispatch"
	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoNegotiatorFactory = errors.New("negotiator factory is nil")
	ErrNilNegotiator       = errors.New("negotiator factory returned nil")
)

type Orchestrator struct {
	cfg    Config
	neg    core.Negotiator
	bridge *dispatch.Bridge
	logger zerolog.Logger

	newSignal func() core.SignalTransport

	state  atomic.Int32
	closed atomic.Bool
	box    outbox

	// opMu serializes join, leave and close.
	opMu sync.Mutex

	// mu guards the fields below.
	mu         sync.Mutex
	membership domain.ChannelMembership
	sink       core.EventSink
	sig        core.SignalTransport
	joinedAt   time.Time
	worker     *worker
}

type Option func(*Orchestrator)

// WithBridge sets the bridge events are delivered through.
func WithBridge(b *dispatch.Bridge) Option {
	return func(o *Orchestrator) { o.bridge = b }
}

func WithSink(s core.EventSink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithSignaling enables the coordination server. newTransport is called once
// per join.
func WithSignaling(newTransport func() core.SignalTransport) Option {
	return func(o *Orchestrator) { o.newSignal = newTransport }
}

// New builds the negotiator from cfg and initializes it. A negotiator that
// fails to initialize is cleaned up and reported as an error.
func New(cfg Config, factory core.NegotiatorFactory, opts ...Option) (*Orchestrator, error) {
	if factory == nil {
		return nil, ErrNoNegotiatorFactory
	}
	o := &Orchestrator{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	if o.bridge == nil {
		o.bridge = dispatch.NewBridge(nil)
	}
	o.logger = log.With().Str("module", "orch").Str("app_id", cfg.AppID).Logger().Level(cfg.Level())
	o.state.Store(int32(domain.StateDisconnected))

	neg := factory(cfg.NegotiatorConfig())
	if neg == nil {
		return nil, ErrNilNegotiator
	}
	neg.SetObserver(&observer{o: o})
	if err := neg.Initialize(); err != nil {
		neg.Cleanup()
		return nil, fmt.Errorf("initialize negotiator: %w", err)
	}
	o.neg = neg

	o.logger.Info().
		Str("env", cfg.Environment).
		Str("audio_codec", cfg.AudioCodec).
		Str("video_codec", cfg.VideoCodec).
		Int("ice_servers", len(cfg.STUNServers)+len(cfg.TURNServers)).
		Msg("engine created")
	return o, nil
}

// SetSink replaces the event sink. Events raised after the call, including
// those already in flight on other goroutines, go to the new sink.
func (o *Orchestrator) SetSink(s core.EventSink) {
	o.mu.Lock()
	o.sink = s
	o.mu.Unlock()
	o.logger.Debug().Bool("bound", s != nil).Msg("sink set")
}

// Close forces a leave when joined, stops the worker and releases the
// negotiator. It is safe to call more than once.
func (o *Orchestrator) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	o.logger.Info().Msg("closing engine")

	o.opMu.Lock()
	o.hold()
	o.leaveLocked()
	o.stopWorker()
	o.opMu.Unlock()
	o.release()

	if o.neg != nil {
		o.neg.Cleanup()
	}
	o.logger.Info().Msg("engine closed")
}

func (o *Orchestrator) Config() Config { return o.cfg }

func (o *Orchestrator) ConnectionState() domain.ConnectionState {
	return domain.ConnectionState(o.state.Load())
}

func (o *Orchestrator) CurrentChannel() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.membership.Channel
}

func (o *Orchestrator) CurrentUserID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.membership.UserID
}

func (o *Orchestrator) IsInChannel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.membership.Empty()
}

// Membership returns a consistent snapshot of channel, user and token.
func (o *Orchestrator) Membership() domain.ChannelMembership {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.membership
}

// transition stores to and emits a state event when the value changed.
func (o *Orchestrator) transition(to domain.ConnectionState, reason domain.StateReason) {
	from := domain.ConnectionState(o.state.Swap(int32(to)))
	if from == to {
		return
	}
	o.logger.Info().Stringer("from", from).Stringer("to", to).Stringer("reason", reason).Msg("state changed")
	o.emit(stateChanged(to, reason))
}

// compareAndTransition moves from -> to only when the state still is from.
func (o *Orchestrator) compareAndTransition(from, to domain.ConnectionState, reason domain.StateReason) bool {
	if !o.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	o.logger.Info().Stringer("from", from).Stringer("to", to).Stringer("reason", reason).Msg("state changed")
	o.emit(stateChanged(to, reason))
	return true
}

func (o *Orchestrator) currentSink() core.EventSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sink
}

// emit queues n and delivers the queue unless an operation holds it or
// another goroutine is already delivering. Safe to call with opMu held.
func (o *Orchestrator) emit(n dispatch.Notification) {
	if o.box.push(n) {
		o.drain()
	}
}

// hold defers delivery until release. Called with opMu held.
func (o *Orchestrator) hold() { o.box.hold() }

// release ends a hold and delivers what it collected. Callers must not hold
// mu or opMu.
func (o *Orchestrator) release() {
	if o.box.release() {
		o.drain()
	}
}

func (o *Orchestrator) drain() {
	for {
		items, ok := o.box.take()
		if !ok {
			return
		}
		o.bridge.DeliverAll(o.currentSink(), items)
	}
}

// outbox orders notifications raised on any goroutine. At most one goroutine
// delivers at a time, and nothing is delivered while an operation holds it.
type outbox struct {
	mu       sync.Mutex
	items    []dispatch.Notification
	held     bool
	draining bool
}

// push appends n and reports whether the caller must drain.
func (b *outbox) push(n dispatch.Notification) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	return b.claim()
}

func (b *outbox) hold() {
	b.mu.Lock()
	b.held = true
	b.mu.Unlock()
}

// release reports whether the caller must drain.
func (b *outbox) release() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.held = false
	return b.claim()
}

func (b *outbox) claim() bool {
	if b.held || b.draining || len(b.items) == 0 {
		return false
	}
	b.draining = true
	return true
}

// take hands the next batch to the draining goroutine. When it returns false
// the caller is no longer draining.
func (b *outbox) take() ([]dispatch.Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.held || len(b.items) == 0 {
		b.draining = false
		return nil, false
	}
	items := b.items
	b.items = nil
	return items, true
}
