package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc/panics"
)

// JoinChannel joins channel as userID. It blocks until negotiation completes,
// fails, or ConnectionTimeout elapses. Events raised while the join runs,
// including those from other goroutines, are delivered in order after the call
// has released all locks.
func (o *Orchestrator) JoinChannel(ctx context.Context, token, channel, userID string) domain.ResultCode {
	o.opMu.Lock()
	o.hold()
	code := o.join(ctx, token, channel, userID)
	o.opMu.Unlock()
	o.release()
	return code
}

func (o *Orchestrator) join(ctx context.Context, token, channel, userID string) domain.ResultCode {
	if o.closed.Load() || o.neg == nil {
		o.logger.Error().Msg("join on closed engine")
		return domain.CodeNotInitialized
	}
	m, err := domain.NewChannelMembership(token, channel, userID)
	if err != nil {
		o.logger.Warn().Err(err).Msg("join rejected")
		return domain.CodeInvalidArgument
	}

	o.mu.Lock()
	if !o.membership.Empty() {
		current := o.membership.Channel
		o.mu.Unlock()
		o.logger.Warn().Str("channel", current).Msg("already in channel")
		return domain.CodeAlreadyInChannel
	}
	o.membership = m
	o.joinedAt = time.Now()
	o.mu.Unlock()

	o.logger.Info().Str("channel", m.Channel).Str("user_id", m.UserID).Msg("joining channel")
	o.transition(domain.StateConnecting, domain.ReasonJoining)

	var code domain.ResultCode
	var pc panics.Catcher
	pc.Try(func() { code = o.connect(ctx, m) })
	if r := pc.Recovered(); r != nil {
		return o.failJoin(domain.CodeJoinFault, r.AsError())
	}
	return code
}

func (o *Orchestrator) connect(ctx context.Context, m domain.ChannelMembership) domain.ResultCode {
	start := time.Now()

	if err := o.neg.CreatePeerConnection(); err != nil {
		return o.failJoin(domain.CodePeerConnectionFailed, fmt.Errorf("create peer connection: %w", err))
	}
	if err := o.neg.AddLocalStreams(); err != nil {
		return o.failJoin(domain.CodeLocalStreamsFailed, fmt.Errorf("add local streams: %w", err))
	}
	o.startWorker()

	nctx, cancel := context.WithTimeout(ctx, o.cfg.ConnectionTimeout)
	defer cancel()
	if code, err := o.negotiate(nctx, m); err != nil {
		return o.failJoin(code, err)
	}

	o.transition(domain.StateConnected, domain.ReasonJoinSuccess)
	elapsed := time.Since(start)
	o.logger.Info().
		Str("channel", m.Channel).
		Str("user_id", m.UserID).
		Dur("elapsed", elapsed).
		Msg("joined channel")
	o.emit(joinSuccess(m.Channel, m.UserID, elapsed))
	return domain.CodeOK
}

// negotiate connects signaling when configured, then produces and applies the
// local offer.
func (o *Orchestrator) negotiate(ctx context.Context, m domain.ChannelMembership) (domain.ResultCode, error) {
	var sig core.SignalTransport
	if o.newSignal != nil {
		sig = o.newSignal()
		sig.OnMessage(func(msg core.SignalMessage) { o.onSignal(sig, msg) })
		o.mu.Lock()
		o.sig = sig
		o.mu.Unlock()

		if err := sig.Connect(ctx, o.cfg.SignalingURL, m.Token); err != nil {
			return timeoutOr(ctx, err, domain.CodeSignalingFailed), fmt.Errorf("connect signaling: %w", err)
		}
		if err := sig.Send(core.SignalMessage{
			Type:        core.SignalJoinChannel,
			ChannelName: m.Channel,
			SenderID:    m.UserID,
		}); err != nil {
			return domain.CodeSignalingFailed, fmt.Errorf("send join: %w", err)
		}
	}

	offer, err := o.neg.CreateOffer().Wait(ctx)
	if err != nil {
		return timeoutOr(ctx, err, domain.CodeNegotiationFailed), fmt.Errorf("create offer: %w", err)
	}
	if _, err := o.neg.SetLocalDescription(offer).Wait(ctx); err != nil {
		return timeoutOr(ctx, err, domain.CodeNegotiationFailed), fmt.Errorf("set local description: %w", err)
	}

	if sig != nil {
		payload, err := json.Marshal(core.SDPPayload{SDP: offer.SDP})
		if err != nil {
			return domain.CodeSignalingFailed, err
		}
		if err := sig.Send(core.SignalMessage{
			Type:        core.SignalOffer,
			ChannelName: m.Channel,
			SenderID:    m.UserID,
			Payload:     payload,
		}); err != nil {
			return domain.CodeSignalingFailed, fmt.Errorf("send offer: %w", err)
		}
	}
	return domain.CodeOK, nil
}

func timeoutOr(ctx context.Context, err error, code domain.ResultCode) domain.ResultCode {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.CodeNegotiationTimeout
	}
	return code
}

// failJoin unwinds a partial join. Membership is cleared on every failure.
func (o *Orchestrator) failJoin(code domain.ResultCode, cause error) domain.ResultCode {
	if cause == nil {
		cause = errors.New(code.String())
	}
	o.logger.Error().Err(cause).Stringer("code", code).Msg("join failed")

	if err := o.teardown(false); err != nil {
		o.logger.Error().Err(err).Msg("unwind after failed join")
	}
	o.clearMembership()
	o.transition(domain.StateFailed, domain.ReasonJoinFailed)
	o.emit(errorEvent(code, cause.Error()))
	return code
}

// LeaveChannel leaves the current channel. It succeeds without effect when
// not joined, and returns only after the worker has exited.
func (o *Orchestrator) LeaveChannel() domain.ResultCode {
	return o.leave()
}

func (o *Orchestrator) leave() domain.ResultCode {
	o.opMu.Lock()
	o.hold()
	code := o.leaveLocked()
	o.opMu.Unlock()
	o.release()
	return code
}

func (o *Orchestrator) leaveLocked() domain.ResultCode {
	m := o.Membership()
	if m.Empty() {
		if o.ConnectionState() == domain.StateFailed {
			o.transition(domain.StateDisconnected, domain.ReasonLeaveChannel)
		}
		o.logger.Debug().Msg("leave: not in channel")
		return domain.CodeOK
	}

	o.logger.Info().Str("channel", m.Channel).Str("user_id", m.UserID).Msg("leaving channel")
	err := o.teardown(true)
	o.clearMembership()
	o.transition(domain.StateDisconnected, domain.ReasonLeaveChannel)
	if err != nil {
		o.logger.Error().Err(err).Msg("fault during leave")
		o.emit(errorEvent(domain.CodeLeaveFault, err.Error()))
		return domain.CodeLeaveFault
	}
	o.emit(leaveEvent())
	return domain.CodeOK
}

func (o *Orchestrator) clearMembership() {
	o.mu.Lock()
	o.membership = domain.ChannelMembership{}
	o.joinedAt = time.Time{}
	o.mu.Unlock()
}

// teardown stops the worker, closes signaling and unwinds the negotiator in
// reverse order. A panic from a collaborator is returned as an error.
func (o *Orchestrator) teardown(sendLeave bool) error {
	o.stopWorker()

	o.mu.Lock()
	sig := o.sig
	o.sig = nil
	m := o.membership
	o.mu.Unlock()

	var pc panics.Catcher
	if sig != nil {
		pc.Try(func() {
			if sendLeave {
				err := sig.Send(core.SignalMessage{
					Type:        core.SignalLeaveChannel,
					ChannelName: m.Channel,
					SenderID:    m.UserID,
				})
				if err != nil {
					o.logger.Warn().Err(err).Msg("send leave")
				}
			}
			sig.Close()
		})
	}
	pc.Try(o.neg.RemoveLocalStreams)
	pc.Try(o.neg.ClosePeerConnection)
	if r := pc.Recovered(); r != nil {
		return r.AsError()
	}
	return nil
}
