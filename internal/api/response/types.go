package response

import "github.com/ercanvas/locamoo/internal/model"

// ChatHistory is the recent global chat window, oldest first
type ChatHistory struct {
	Messages []*model.ChatMessage `json:"messages"`
}

// HiddenWords is the moderation block-list, newest first
type HiddenWords struct {
	Words []model.HiddenWord `json:"words"`
}

// Health reports server liveness
type Health struct {
	Status string `json:"status"`
}
