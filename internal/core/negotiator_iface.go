package core

//go:generate mockgen -source=negotiator_iface.go -destination=mocks/negotiator_mock.go -package=mocks

import (
	"time"

	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/pion/webrtc/v4"
)

// NegotiatorConfig is derived from the engine configuration once per engine.
type NegotiatorConfig struct {
	ICEServers                 []domain.IceServerSpec
	AudioCodec                 string
	VideoCodec                 string
	EnableHardwareAcceleration bool
	EnableAudioProcessing      bool
	EnableMulticastDNS         bool
	ConnectionTimeout          time.Duration
}

// Negotiator owns one peer connection at a time.
//
// CreatePeerConnection must precede AddLocalStreams, which must precede offer
// or answer creation. Steps called out of order fail fast. Asynchronous steps
// return a Task completed exactly once on a goroutine other than the caller's.
type Negotiator interface {
	Initialize() error
	// Cleanup closes the peer connection and waits for outstanding tasks.
	Cleanup()
	SetObserver(NegotiatorObserver)

	CreatePeerConnection() error
	ClosePeerConnection()
	AddLocalStreams() error
	RemoveLocalStreams()

	CreateOffer() *Task[webrtc.SessionDescription]
	CreateAnswer() *Task[webrtc.SessionDescription]
	SetLocalDescription(desc webrtc.SessionDescription) *Task[struct{}]
	SetRemoteDescription(desc webrtc.SessionDescription) *Task[struct{}]
	AddIceCandidate(candidate, sdpMid string, sdpMLineIndex uint16) error

	SetupLocalVideo(surface domain.Surface)
	SetupRemoteVideo(surface domain.Surface, userID string)
	MuteLocalAudio(muted bool)
	EnableLocalVideo(enabled bool)

	GetStats() *Task[domain.RtcStats]
	// IsConnected reports peer connection created and local streams added.
	IsConnected() bool
}

// NegotiatorFactory builds a negotiator from derived settings.
type NegotiatorFactory func(NegotiatorConfig) Negotiator

// NegotiatorObserver receives negotiator events. Calls come from pion and
// task goroutines and must not assume the caller holds any lock.
type NegotiatorObserver interface {
	OnSignalingChange(state webrtc.SignalingState)
	OnICEConnectionChange(state webrtc.ICEConnectionState)
	OnPeerConnectionChange(state webrtc.PeerConnectionState)
	OnICECandidate(candidate webrtc.ICECandidateInit)
	OnICEGatheringComplete()
	OnLocalStreamAdded(frame FrameInfo)
	OnRemoteStreamAdded(streamID, kind string)
	OnRemoteStreamRemoved(streamID string)
	OnFirstRemoteVideoFrame(streamID string, frame FrameInfo)
	OnError(err error)
}
