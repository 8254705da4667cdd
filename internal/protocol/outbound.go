package protocol

import (
	"encoding/json"
	"time"

	"github.com/ercanvas/locamoo/internal/model"
)

// StatsUpdate carries aggregate presence counts to every connected client
type StatsUpdate struct {
	Type          MessageType `json:"type"`
	OnlinePlayers int         `json:"onlinePlayers"`
	InQueue       int         `json:"inQueue"`
}

// NewStatsUpdate builds a STATS_UPDATE envelope
func NewStatsUpdate(online, queued int) StatsUpdate {
	return StatsUpdate{Type: TypeStatsUpdate, OnlinePlayers: online, InQueue: queued}
}

// Opponent is the public profile snapshot sent with MATCH_FOUND
type Opponent struct {
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
	Level    int    `json:"level"`
}

// MatchFound tells one side of a formed pair who they play against
type MatchFound struct {
	Type     MessageType `json:"type"`
	Opponent Opponent    `json:"opponent"`
}

// NewMatchFound builds a MATCH_FOUND envelope from the opponent's profile
func NewMatchFound(opponent *model.PlayerProfile) MatchFound {
	return MatchFound{
		Type: TypeMatchFound,
		Opponent: Opponent{
			Username: opponent.Username,
			PhotoURL: opponent.PhotoURL,
			Level:    opponent.Level,
		},
	}
}

// DirectChat is a relayed one-to-one chat message. The sender and timestamp
// are stamped server-side, never trusted from the client.
type DirectChat struct {
	Type      MessageType `json:"type"`
	From      string      `json:"from"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notification is a relayed friend request or acceptance
type Notification struct {
	Type             MessageType `json:"type"`
	NotificationType string      `json:"notificationType"`
	From             string      `json:"from"`
}

// VoiceSignal is a relayed offer/answer/ICE envelope. The payload passes
// through untouched; only from is rewritten to the verified sender.
type VoiceSignal struct {
	Type      MessageType     `json:"type"`
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// VoiceRoomEvent notifies existing room participants of a join or departure
type VoiceRoomEvent struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username"`
}

// GlobalChat is a moderated chat message broadcast to every connected socket
type GlobalChat struct {
	Type      MessageType `json:"type"`
	Username  string      `json:"username"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	PhotoURL  string      `json:"photoUrl"`
	Role      string      `json:"role"`
}

// NewGlobalChat builds a GLOBAL_CHAT broadcast from a persisted message
func NewGlobalChat(msg *model.ChatMessage) GlobalChat {
	return GlobalChat{
		Type:      TypeGlobalChat,
		Username:  msg.Username,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
		PhotoURL:  msg.PhotoURL,
		Role:      msg.Role,
	}
}
