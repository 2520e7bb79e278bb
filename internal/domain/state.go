package domain

// ConnectionState is the session-level connection state reported to the host.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota + 1
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateReason travels with every state change. The state machine does not
// interpret it.
type StateReason int

const (
	ReasonJoining StateReason = iota + 1
	ReasonJoinSuccess
	ReasonInterrupted
	ReasonRecovered
	ReasonJoinFailed
	ReasonLeaveChannel
	ReasonTransportFailed
)

func (r StateReason) String() string {
	switch r {
	case ReasonJoining:
		return "joining"
	case ReasonJoinSuccess:
		return "join_success"
	case ReasonInterrupted:
		return "interrupted"
	case ReasonRecovered:
		return "recovered"
	case ReasonJoinFailed:
		return "join_failed"
	case ReasonLeaveChannel:
		return "leave_channel"
	case ReasonTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// OfflineReason is passed with OnUserOffline.
type OfflineReason int

const (
	OfflineQuit OfflineReason = iota
	OfflineDropped
)
