package orch

import (
	"time"

	"github.com/dkeye/rtcengine/internal/app/dispatch"
	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
)

func stateChanged(state domain.ConnectionState, reason domain.StateReason) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnConnectionStateChanged",
		Invoke: func(s core.EventSink) { s.OnConnectionStateChanged(state, reason) },
	}
}

func errorEvent(code domain.ResultCode, msg string) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnError",
		Invoke: func(s core.EventSink) { s.OnError(code, msg) },
	}
}

func joinSuccess(channel, userID string, elapsed time.Duration) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnJoinChannelSuccess",
		Invoke: func(s core.EventSink) { s.OnJoinChannelSuccess(channel, userID, elapsed) },
	}
}

func leaveEvent() dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnLeaveChannel",
		Invoke: func(s core.EventSink) { s.OnLeaveChannel() },
	}
}

func userJoined(userID string) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnUserJoined",
		Invoke: func(s core.EventSink) { s.OnUserJoined(userID) },
	}
}

func userOffline(userID string, reason domain.OfflineReason) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnUserOffline",
		Invoke: func(s core.EventSink) { s.OnUserOffline(userID, reason) },
	}
}

func firstRemoteVideo(userID string, width, height int, elapsed time.Duration) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnFirstRemoteVideoDecoded",
		Invoke: func(s core.EventSink) { s.OnFirstRemoteVideoDecoded(userID, width, height, elapsed) },
	}
}

func firstLocalVideo(width, height int, elapsed time.Duration) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnFirstLocalVideoFrame",
		Invoke: func(s core.EventSink) { s.OnFirstLocalVideoFrame(width, height, elapsed) },
	}
}

func rtcStats(stats domain.RtcStats) dispatch.Notification {
	return dispatch.Notification{
		Name:   "OnRtcStats",
		Invoke: func(s core.EventSink) { s.OnRtcStats(stats) },
	}
}
