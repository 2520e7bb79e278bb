package core

//go:generate mockgen -source=sink_iface.go -destination=mocks/sink_mock.go -package=mocks

import (
	"time"

	"github.com/dkeye/rtcengine/internal/domain"
)

// EventSink is the host-side receiver of engine events.
// Implementations may be invoked from any goroutine.
type EventSink interface {
	OnUserJoined(userID string)
	OnUserOffline(userID string, reason domain.OfflineReason)
	OnConnectionStateChanged(state domain.ConnectionState, reason domain.StateReason)
	OnError(code domain.ResultCode, message string)
	OnJoinChannelSuccess(channel, userID string, elapsed time.Duration)
	OnLeaveChannel()
	OnFirstRemoteVideoDecoded(userID string, width, height int, elapsed time.Duration)
	OnFirstLocalVideoFrame(width, height int, elapsed time.Duration)
	OnRtcStats(stats domain.RtcStats)
}
