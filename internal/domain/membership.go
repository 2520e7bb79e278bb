// Package domain contains entities without logic, just meta-data
package domain

import "errors"

const MaxIdentityLen = 255

var (
	ErrTokenEmpty      = errors.New("token empty")
	ErrChannelEmpty    = errors.New("channel name empty")
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrIdentityTooLong = errors.New("channel name or user id too long")
)

// ChannelMembership is the identity of one session. The three fields are set
// and cleared together.
type ChannelMembership struct {
	Channel string
	UserID  string
	Token   string
}

// NewChannelMembership validates the join parameters.
func NewChannelMembership(token, channel, userID string) (ChannelMembership, error) {
	switch {
	case token == "":
		return ChannelMembership{}, ErrTokenEmpty
	case channel == "":
		return ChannelMembership{}, ErrChannelEmpty
	case userID == "":
		return ChannelMembership{}, ErrUserIDEmpty
	case len(channel) > MaxIdentityLen || len(userID) > MaxIdentityLen:
		return ChannelMembership{}, ErrIdentityTooLong
	}
	return ChannelMembership{Channel: channel, UserID: userID, Token: token}, nil
}

func (m ChannelMembership) Empty() bool { return m.Channel == "" }
