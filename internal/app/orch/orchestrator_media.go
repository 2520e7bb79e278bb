package orch

import (
	"errors"

	"github.com/dkeye/rtcengine/internal/domain"
)

var ErrEngineClosed = errors.New("engine closed")

func (o *Orchestrator) usable(op string) bool {
	if o.closed.Load() || o.neg == nil {
		o.logger.Error().Str("op", op).Msg("negotiator not available")
		return false
	}
	return true
}

// SetupLocalVideo binds the local preview surface.
func (o *Orchestrator) SetupLocalVideo(surface domain.Surface) error {
	if !o.usable("setup_local_video") {
		return ErrEngineClosed
	}
	o.logger.Debug().Str("surface", surface.ID).Msg("setup local video")
	o.neg.SetupLocalVideo(surface)
	return nil
}

// SetupRemoteVideo binds the surface rendering userID's video.
func (o *Orchestrator) SetupRemoteVideo(surface domain.Surface, userID string) error {
	if !o.usable("setup_remote_video") {
		return ErrEngineClosed
	}
	if userID == "" {
		o.logger.Warn().Msg("setup remote video: empty user id")
		return domain.ErrUserIDEmpty
	}
	o.logger.Debug().Str("surface", surface.ID).Str("user_id", userID).Msg("setup remote video")
	o.neg.SetupRemoteVideo(surface, userID)
	return nil
}

func (o *Orchestrator) MuteLocalAudio(muted bool) error {
	if !o.usable("mute_local_audio") {
		return ErrEngineClosed
	}
	o.logger.Info().Bool("muted", muted).Msg("mute local audio")
	o.neg.MuteLocalAudio(muted)
	return nil
}

func (o *Orchestrator) EnableLocalVideo(enabled bool) error {
	if !o.usable("enable_local_video") {
		return ErrEngineClosed
	}
	o.logger.Info().Bool("enabled", enabled).Msg("enable local video")
	o.neg.EnableLocalVideo(enabled)
	return nil
}
