package core

import (
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// FrameInfo describes a captured or rendered video frame.
type FrameInfo struct {
	Width  int
	Height int
}

// MediaIO is the capture and render device behind the negotiator.
type MediaIO interface {
	// StartCapture begins feeding the local tracks. video may be nil.
	StartCapture(audio, video *webrtc.TrackLocalStaticSample) error
	StopCapture()
	// FirstLocalFrame yields one value when capture produced its first video
	// frame.
	FirstLocalFrame() <-chan FrameInfo
	MuteAudio(muted bool)
	EnableVideo(enabled bool)
	// AttachRenderer binds a render surface to a target (a remote user id or
	// LocalTarget).
	AttachRenderer(target string, surface domain.Surface)
	// Render consumes one remote RTP packet for target and returns the frame
	// size of its surface, when known.
	Render(target string, pkt *rtp.Packet) FrameInfo
}

// LocalTarget is the renderer target of the local preview.
const LocalTarget = "local"
