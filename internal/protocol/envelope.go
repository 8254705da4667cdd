package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType discriminates every envelope exchanged over the socket
type MessageType string

// Client -> server message types
const (
	TypeJoinQueue     MessageType = "JOIN_QUEUE"
	TypeLeaveQueue    MessageType = "LEAVE_QUEUE"
	TypeChatMessage   MessageType = "CHAT_MESSAGE"
	TypeFriendRequest MessageType = "FRIEND_REQUEST"
	TypeFriendAccept  MessageType = "FRIEND_ACCEPT"
	TypeGlobalChat    MessageType = "GLOBAL_CHAT"
	TypeVoiceJoin     MessageType = "VOICE_JOIN"
	TypeVoiceLeave    MessageType = "VOICE_LEAVE"
	TypeVoiceOffer    MessageType = "VOICE_OFFER"
	TypeVoiceAnswer   MessageType = "VOICE_ANSWER"
	TypeVoiceICE      MessageType = "VOICE_ICE"
)

// Server -> client message types
const (
	TypeStatsUpdate     MessageType = "STATS_UPDATE"
	TypeMatchFound      MessageType = "MATCH_FOUND"
	TypeNotification    MessageType = "NOTIFICATION"
	TypeVoiceUserJoined MessageType = "VOICE_USER_JOINED"
	TypeVoiceUserLeft   MessageType = "VOICE_USER_LEFT"
)

// Notification subtypes carried by NOTIFICATION envelopes
const (
	NotificationFriendRequest  = "FRIEND_REQUEST"
	NotificationFriendAccepted = "FRIEND_ACCEPTED"
)

// Decode errors
var (
	ErrMissingType     = errors.New("envelope is missing a type")
	ErrMissingUsername = errors.New("envelope is missing a username")
	ErrUnknownType     = errors.New("unknown envelope type")
)

// clientTypes is the closed set of envelope types accepted from clients.
// Anything else is rejected at decode time.
var clientTypes = map[MessageType]bool{
	TypeJoinQueue:     true,
	TypeLeaveQueue:    true,
	TypeChatMessage:   true,
	TypeFriendRequest: true,
	TypeFriendAccept:  true,
	TypeGlobalChat:    true,
	TypeVoiceJoin:     true,
	TypeVoiceLeave:    true,
	TypeVoiceOffer:    true,
	TypeVoiceAnswer:   true,
	TypeVoiceICE:      true,
}

// Envelope is one inbound JSON message from a client. Optional fields are
// interpreted per type; signaling payloads are relayed opaque.
type Envelope struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username"`
	To       string      `json:"to,omitempty"`
	Message  string      `json:"message,omitempty"`
	RoomID   string      `json:"roomId,omitempty"`

	// Voice signaling payloads; never inspected by the relay
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Decode parses and validates an inbound envelope. Every client envelope
// must carry a known type and the sender's handle.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	if !clientTypes[env.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if env.Username == "" {
		return nil, ErrMissingUsername
	}
	return &env, nil
}
