// Package host turns engine events into JSON frames for host subscribers.
package host

import (
	"sync"
	"time"

	"github.com/dkeye/rtcengine/internal/app"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultSubscriberBuffer = 64

// Event is one frame on the host event stream.
type Event struct {
	Type   string     `json:"type"`
	Handle app.Handle `json:"handle"`
	Time   int64      `json:"time"`
	Data   any        `json:"data,omitempty"`
}

type userEvent struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

type stateEvent struct {
	State  string `json:"state"`
	Code   int    `json:"stateCode"`
	Reason string `json:"reason"`
}

type errorEvent struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type joinEvent struct {
	Channel   string `json:"channel"`
	UserID    string `json:"userId"`
	ElapsedMs int64  `json:"elapsed"`
}

type frameEvent struct {
	UserID    string `json:"userId,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ElapsedMs int64  `json:"elapsed"`
}

// Subscriber is one consumer of a sink's frames.
type Subscriber struct {
	ch      chan []byte
	dropped int
	closed  bool
}

// C yields encoded frames. It is closed when the subscriber is removed.
func (s *Subscriber) C() <-chan []byte { return s.ch }

// StreamSink is a core.EventSink that encodes every event once and fans it out
// to its subscribers. Slow subscribers are handled by the policy.
type StreamSink struct {
	logger zerolog.Logger
	policy app.Policy
	buffer int

	mu     sync.Mutex
	handle app.Handle
	subs   map[*Subscriber]struct{}
}

func NewStreamSink(policy app.Policy, buffer int) *StreamSink {
	if policy == nil {
		policy = app.SimplePolicy{MaxDropped: 16}
	}
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &StreamSink{
		logger: log.With().Str("module", "host").Logger(),
		policy: policy,
		buffer: buffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Bind stamps h on subsequent events.
func (s *StreamSink) Bind(h app.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *StreamSink) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan []byte, s.buffer)}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	n := len(s.subs)
	s.mu.Unlock()
	s.logger.Debug().Int("subscribers", n).Msg("subscribed")
	return sub
}

func (s *StreamSink) Unsubscribe(sub *Subscriber) {
	s.mu.Lock()
	s.removeLocked(sub)
	s.mu.Unlock()
}

// Close removes every subscriber.
func (s *StreamSink) Close() {
	s.mu.Lock()
	for sub := range s.subs {
		s.removeLocked(sub)
	}
	s.mu.Unlock()
}

func (s *StreamSink) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *StreamSink) removeLocked(sub *Subscriber) {
	if sub.closed {
		return
	}
	sub.closed = true
	delete(s.subs, sub)
	close(sub.ch)
}

func (s *StreamSink) publish(typ string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{Type: typ, Handle: s.handle, Time: time.Now().UnixMilli(), Data: data}
	frame, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error().Err(err).Str("event", typ).Msg("encode event")
		return
	}
	for sub := range s.subs {
		select {
		case sub.ch <- frame:
			continue
		default:
		}
		sub.dropped++
		if s.policy.OnBackPressure(s.handle, sub.dropped) == app.CloseSubscriber {
			s.logger.Warn().Int64("handle", int64(s.handle)).Int("dropped", sub.dropped).Msg("closing slow subscriber")
			s.removeLocked(sub)
		}
	}
}

func (s *StreamSink) OnUserJoined(userID string) {
	s.publish("userJoined", userEvent{UserID: userID})
}

func (s *StreamSink) OnUserOffline(userID string, reason domain.OfflineReason) {
	r := "quit"
	if reason == domain.OfflineDropped {
		r = "dropped"
	}
	s.publish("userOffline", userEvent{UserID: userID, Reason: r})
}

func (s *StreamSink) OnConnectionStateChanged(state domain.ConnectionState, reason domain.StateReason) {
	s.publish("connectionStateChanged", stateEvent{State: state.String(), Code: int(state), Reason: reason.String()})
}

func (s *StreamSink) OnError(code domain.ResultCode, message string) {
	s.publish("error", errorEvent{Code: int(code), Name: code.String(), Message: message})
}

func (s *StreamSink) OnJoinChannelSuccess(channel, userID string, elapsed time.Duration) {
	s.publish("joinChannelSuccess", joinEvent{Channel: channel, UserID: userID, ElapsedMs: elapsed.Milliseconds()})
}

func (s *StreamSink) OnLeaveChannel() {
	s.publish("leaveChannel", nil)
}

func (s *StreamSink) OnFirstRemoteVideoDecoded(userID string, width, height int, elapsed time.Duration) {
	s.publish("firstRemoteVideoDecoded", frameEvent{UserID: userID, Width: width, Height: height, ElapsedMs: elapsed.Milliseconds()})
}

func (s *StreamSink) OnFirstLocalVideoFrame(width, height int, elapsed time.Duration) {
	s.publish("firstLocalVideoFrame", frameEvent{Width: width, Height: height, ElapsedMs: elapsed.Milliseconds()})
}

func (s *StreamSink) OnRtcStats(stats domain.RtcStats) {
	s.publish("rtcStats", stats)
}
