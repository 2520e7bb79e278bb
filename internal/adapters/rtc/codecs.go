package rtc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

var ErrUnsupportedCodec = errors.New("unsupported codec")

var videoFeedback = []webrtc.RTCPFeedback{
	{Type: "goog-remb"},
	{Type: "ccm", Parameter: "fir"},
	{Type: "nack"},
	{Type: "nack", Parameter: "pli"},
}

var audioCodecs = map[string]webrtc.RTPCodecParameters{
	"OPUS": {
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeOpus,
			ClockRate:   48000,
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		},
		PayloadType: 111,
	},
	"PCMU": {
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000},
		PayloadType:        0,
	},
	"PCMA": {
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMA, ClockRate: 8000},
		PayloadType:        8,
	},
}

var videoCodecs = map[string]webrtc.RTPCodecParameters{
	"H264": {
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeH264,
			ClockRate:    90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f",
			RTCPFeedback: videoFeedback,
		},
		PayloadType: 102,
	},
	"VP8": {
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeVP8,
			ClockRate:    90000,
			RTCPFeedback: videoFeedback,
		},
		PayloadType: 96,
	},
	"VP9": {
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeVP9,
			ClockRate:    90000,
			SDPFmtpLine:  "profile-id=0",
			RTCPFeedback: videoFeedback,
		},
		PayloadType: 98,
	},
}

// registerCodecs registers exactly the configured audio and video codec and
// returns their capabilities for the local tracks.
func registerCodecs(me *webrtc.MediaEngine, audio, video string) (webrtc.RTPCodecCapability, webrtc.RTPCodecCapability, error) {
	var none webrtc.RTPCodecCapability

	ac, ok := audioCodecs[strings.ToUpper(audio)]
	if !ok {
		return none, none, fmt.Errorf("%w: audio %q", ErrUnsupportedCodec, audio)
	}
	vc, ok := videoCodecs[strings.ToUpper(video)]
	if !ok {
		return none, none, fmt.Errorf("%w: video %q", ErrUnsupportedCodec, video)
	}
	if err := me.RegisterCodec(ac, webrtc.RTPCodecTypeAudio); err != nil {
		return none, none, fmt.Errorf("register %s: %w", ac.MimeType, err)
	}
	if err := me.RegisterCodec(vc, webrtc.RTPCodecTypeVideo); err != nil {
		return none, none, fmt.Errorf("register %s: %w", vc.MimeType, err)
	}
	return ac.RTPCodecCapability, vc.RTPCodecCapability, nil
}
