package domain

import "fmt"

// ResultCode is returned synchronously by host commands and carried by
// OnError for runtime conditions. Zero is success, everything else is negative.
type ResultCode int

const (
	CodeOK                   ResultCode = 0
	CodeAlreadyInChannel     ResultCode = -1
	CodeNotInitialized       ResultCode = -2
	CodeInvalidArgument      ResultCode = -3
	CodePeerConnectionFailed ResultCode = -4
	CodeLocalStreamsFailed   ResultCode = -5
	CodeJoinFault            ResultCode = -6
	CodeNegotiationFailed    ResultCode = -7
	CodeNegotiationTimeout   ResultCode = -8
	CodeSignalingFailed      ResultCode = -9
	CodeInvalidHandle        ResultCode = -10
	CodeLeaveFault           ResultCode = -11

	// Runtime-only codes, delivered through OnError.
	CodeTransportFailed ResultCode = -12
	CodeSignalingError  ResultCode = -13
	CodeNegotiatorError ResultCode = -14
)

var codeNames = map[ResultCode]string{
	CodeOK:                   "ok",
	CodeAlreadyInChannel:     "already_in_channel",
	CodeNotInitialized:       "not_initialized",
	CodeInvalidArgument:      "invalid_argument",
	CodePeerConnectionFailed: "peer_connection_failed",
	CodeLocalStreamsFailed:   "local_streams_failed",
	CodeJoinFault:            "join_fault",
	CodeNegotiationFailed:    "negotiation_failed",
	CodeNegotiationTimeout:   "negotiation_timeout",
	CodeSignalingFailed:      "signaling_failed",
	CodeInvalidHandle:        "invalid_handle",
	CodeLeaveFault:           "leave_fault",
	CodeTransportFailed:      "transport_failed",
	CodeSignalingError:       "signaling_error",
	CodeNegotiatorError:      "negotiator_error",
}

func (c ResultCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("code(%d)", int(c))
}
