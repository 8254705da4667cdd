package model

import "time"

// ChatMessage is a persisted global chat entry. Messages are written by the
// relay at send time and read back by the history endpoint; the retention
// sweeper deletes entries older than the rolling window.
type ChatMessage struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	PhotoURL  string    `json:"photoUrl"`
	Role      string    `json:"role"`
}

// HiddenWord is one entry of the moderation block-list
type HiddenWord struct {
	Word    string    `json:"word"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}
