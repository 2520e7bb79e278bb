package core

//go:generate mockgen -source=signal_iface.go -destination=mocks/signal_mock.go -package=mocks

import (
	"context"

	"github.com/goccy/go-json"
)

// Signaling message types understood by the coordination server.
const (
	SignalConnectionAck       = "connection_ack"
	SignalPing                = "ping"
	SignalPong                = "pong"
	SignalJoinChannel         = "join_channel"
	SignalJoinChannelSuccess  = "join_channel_success"
	SignalLeaveChannel        = "leave_channel"
	SignalLeaveChannelSuccess = "leave_channel_success"
	SignalUserJoined          = "user_joined"
	SignalUserLeft            = "user_left"
	SignalOffer               = "offer"
	SignalAnswer              = "answer"
	SignalICECandidate        = "ice_candidate"
	SignalError               = "error"
)

// SignalMessage is the envelope exchanged with the coordination server.
type SignalMessage struct {
	Type         string          `json:"type"`
	SessionID    string          `json:"session_id,omitempty"`
	SenderID     string          `json:"sender_id,omitempty"`
	TargetUserID string          `json:"target_user_id,omitempty"`
	ChannelName  string          `json:"channel_name,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Error        string          `json:"error,omitempty"`
	Timestamp    int64           `json:"timestamp,omitempty"`
}

// SDPPayload is the payload of offer and answer messages.
type SDPPayload struct {
	SDP string `json:"sdp"`
}

// CandidatePayload is the payload of ice_candidate messages.
type CandidatePayload struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

// SignalTransport abstracts the connection to the coordination server.
// Owned by the orchestrator for one session; it must Close() it.
type SignalTransport interface {
	Connect(ctx context.Context, url, token string) error
	Send(SignalMessage) error
	// OnMessage sets the inbound handler. It is called from the transport's
	// read goroutine, one message at a time.
	OnMessage(func(SignalMessage))
	Close()
}
