package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"
)

// observer adapts negotiator callbacks to state changes and sink events.
type observer struct {
	o *Orchestrator
}

func (ob *observer) OnSignalingChange(state webrtc.SignalingState) {
	ob.o.logger.Debug().Stringer("signaling_state", state).Msg("signaling state")
}

func (ob *observer) OnICEConnectionChange(state webrtc.ICEConnectionState) {
	ob.o.logger.Info().Stringer("ice_state", state).Msg("ICE state")
}

func (ob *observer) OnPeerConnectionChange(state webrtc.PeerConnectionState) {
	o := ob.o
	o.logger.Info().Stringer("peer_connection_state", state).Msg("peer state")
	switch state {
	case webrtc.PeerConnectionStateDisconnected:
		o.compareAndTransition(domain.StateConnected, domain.StateReconnecting, domain.ReasonInterrupted)
	case webrtc.PeerConnectionStateConnected:
		o.compareAndTransition(domain.StateReconnecting, domain.StateConnected, domain.ReasonRecovered)
	case webrtc.PeerConnectionStateFailed:
		if o.compareAndTransition(domain.StateConnected, domain.StateFailed, domain.ReasonTransportFailed) ||
			o.compareAndTransition(domain.StateReconnecting, domain.StateFailed, domain.ReasonTransportFailed) {
			o.emit(errorEvent(domain.CodeTransportFailed, "peer connection failed"))
		}
	}
}

func (ob *observer) OnICECandidate(c webrtc.ICECandidateInit) {
	o := ob.o
	sig, m := o.signaler()
	if sig == nil {
		return
	}
	p := core.CandidatePayload{Candidate: c.Candidate}
	if c.SDPMid != nil {
		p.SDPMid = *c.SDPMid
	}
	if c.SDPMLineIndex != nil {
		p.SDPMLineIndex = *c.SDPMLineIndex
	}
	payload, err := json.Marshal(p)
	if err != nil {
		o.logger.Error().Err(err).Msg("encode candidate")
		return
	}
	if err := sig.Send(core.SignalMessage{
		Type:        core.SignalICECandidate,
		ChannelName: m.Channel,
		SenderID:    m.UserID,
		Payload:     payload,
	}); err != nil {
		o.logger.Warn().Err(err).Msg("send candidate")
	}
}

func (ob *observer) OnICEGatheringComplete() {
	ob.o.logger.Debug().Msg("ICE gathering complete")
}

func (ob *observer) OnLocalStreamAdded(frame core.FrameInfo) {
	o := ob.o
	o.logger.Info().Int("width", frame.Width).Int("height", frame.Height).Msg("first local frame")
	o.emit(firstLocalVideo(frame.Width, frame.Height, o.sinceJoin()))
}

func (ob *observer) OnRemoteStreamAdded(streamID, kind string) {
	ob.o.logger.Info().Str("stream_id", streamID).Str("kind", kind).Msg("remote stream added")
}

func (ob *observer) OnRemoteStreamRemoved(streamID string) {
	o := ob.o
	o.logger.Info().Str("stream_id", streamID).Msg("remote stream removed")
	if o.IsInChannel() {
		o.emit(userOffline(streamID, domain.OfflineDropped))
	}
}

func (ob *observer) OnFirstRemoteVideoFrame(streamID string, frame core.FrameInfo) {
	o := ob.o
	o.logger.Info().Str("stream_id", streamID).Int("width", frame.Width).Int("height", frame.Height).Msg("first remote frame")
	o.emit(firstRemoteVideo(streamID, frame.Width, frame.Height, o.sinceJoin()))
}

func (ob *observer) OnError(err error) {
	ob.o.logger.Error().Err(err).Msg("negotiator error")
	ob.o.emit(errorEvent(domain.CodeNegotiatorError, err.Error()))
}

func (o *Orchestrator) sinceJoin() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.joinedAt.IsZero() {
		return 0
	}
	return time.Since(o.joinedAt)
}

func (o *Orchestrator) signaler() (core.SignalTransport, domain.ChannelMembership) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sig, o.membership
}

// onSignal handles one inbound message from sig. Messages from a transport
// that is no longer the active one are dropped.
func (o *Orchestrator) onSignal(sig core.SignalTransport, msg core.SignalMessage) {
	active, m := o.signaler()
	if active != sig {
		o.logger.Debug().Str("type", msg.Type).Msg("drop message from stale signaling")
		return
	}
	l := o.logger.With().Str("type", msg.Type).Str("sender_id", msg.SenderID).Logger()

	switch msg.Type {
	case core.SignalConnectionAck, core.SignalJoinChannelSuccess, core.SignalLeaveChannelSuccess, core.SignalPong:
		l.Debug().Msg("signal ack")

	case core.SignalPing:
		if err := sig.Send(core.SignalMessage{Type: core.SignalPong, SenderID: m.UserID}); err != nil {
			l.Warn().Err(err).Msg("send pong")
		}

	case core.SignalAnswer:
		desc, err := sdpOf(msg, webrtc.SDPTypeAnswer)
		if err != nil {
			l.Warn().Err(err).Msg("bad answer")
			return
		}
		o.neg.SetRemoteDescription(desc).Then(func(_ struct{}, err error) {
			if err != nil {
				l.Error().Err(err).Msg("apply answer")
				o.emit(errorEvent(domain.CodeNegotiatorError, err.Error()))
			}
		})

	case core.SignalOffer:
		if err := o.answerOffer(sig, m, msg); err != nil {
			l.Error().Err(err).Msg("answer offer")
			o.emit(errorEvent(domain.CodeNegotiatorError, err.Error()))
		}

	case core.SignalICECandidate:
		var p core.CandidatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			l.Warn().Err(err).Msg("bad candidate")
			return
		}
		if err := o.neg.AddIceCandidate(p.Candidate, p.SDPMid, p.SDPMLineIndex); err != nil {
			l.Warn().Err(err).Msg("add candidate")
		}

	case core.SignalUserJoined:
		if msg.SenderID == "" || msg.SenderID == m.UserID {
			return
		}
		l.Info().Msg("user joined")
		o.emit(userJoined(msg.SenderID))

	case core.SignalUserLeft:
		if msg.SenderID == "" || msg.SenderID == m.UserID {
			return
		}
		l.Info().Msg("user left")
		o.emit(userOffline(msg.SenderID, domain.OfflineQuit))

	case core.SignalError:
		l.Error().Str("error", msg.Error).Msg("signaling error")
		o.emit(errorEvent(domain.CodeSignalingError, msg.Error))

	default:
		l.Warn().Msg("unknown signal type")
	}
}

func (o *Orchestrator) answerOffer(sig core.SignalTransport, m domain.ChannelMembership, msg core.SignalMessage) error {
	offer, err := sdpOf(msg, webrtc.SDPTypeOffer)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ConnectionTimeout)
	defer cancel()

	if _, err := o.neg.SetRemoteDescription(offer).Wait(ctx); err != nil {
		return fmt.Errorf("set remote offer: %w", err)
	}
	answer, err := o.neg.CreateAnswer().Wait(ctx)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	if _, err := o.neg.SetLocalDescription(answer).Wait(ctx); err != nil {
		return fmt.Errorf("set local answer: %w", err)
	}
	payload, err := json.Marshal(core.SDPPayload{SDP: answer.SDP})
	if err != nil {
		return err
	}
	return sig.Send(core.SignalMessage{
		Type:         core.SignalAnswer,
		ChannelName:  m.Channel,
		SenderID:     m.UserID,
		TargetUserID: msg.SenderID,
		Payload:      payload,
	})
}

var errEmptySDP = errors.New("empty sdp")

func sdpOf(msg core.SignalMessage, typ webrtc.SDPType) (webrtc.SessionDescription, error) {
	var p core.SDPPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return webrtc.SessionDescription{}, err
	}
	if p.SDP == "" {
		return webrtc.SessionDescription{}, errEmptySDP
	}
	return webrtc.SessionDescription{Type: typ, SDP: p.SDP}, nil
}
