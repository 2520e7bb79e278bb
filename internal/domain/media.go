package domain

import "time"

// IceServerSpec is one STUN or TURN entry handed to the peer connection.
type IceServerSpec struct {
	URLs       []string `mapstructure:"urls" json:"urls"`
	Username   string   `mapstructure:"username" json:"username,omitempty"`
	Credential string   `mapstructure:"credential" json:"credential,omitempty"`
}

// Surface is an opaque host render target. Width and Height are the size the
// host laid it out at; zero means unknown.
type Surface struct {
	ID     string `json:"id"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// RtcStats is a periodic statistics snapshot of one session.
type RtcStats struct {
	Duration   time.Duration `json:"-"`
	DurationS  int64         `json:"duration"`
	TxBytes    uint64        `json:"txBytes"`
	RxBytes    uint64        `json:"rxBytes"`
	TxKBitrate uint64        `json:"txKBitrate"`
	RxKBitrate uint64        `json:"rxKBitrate"`
	RTTMs      int64         `json:"rtt"`
}
