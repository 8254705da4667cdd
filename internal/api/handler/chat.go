package handler

import (
	"net/http"
	"time"

	"github.com/ercanvas/locamoo/internal/api/apierr"
	"github.com/ercanvas/locamoo/internal/api/response"
	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/storage"
)

// ChatHandler serves the recent global chat window over REST, so clients can
// backfill history before their socket starts receiving live broadcasts.
type ChatHandler struct {
	store  storage.Store
	clock  clock.Clock
	window time.Duration
}

// NewChatHandler creates a chat history handler
func NewChatHandler(store storage.Store, clk clock.Clock, window time.Duration) *ChatHandler {
	return &ChatHandler{store: store, clock: clk, window: window}
}

// History handles GET /api/chat/global
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	since := h.clock.Now().Add(-h.window)

	messages, err := h.store.GlobalChatSince(r.Context(), since)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []*model.ChatMessage{}
	}

	response.JSON(w, http.StatusOK, response.ChatHistory{Messages: messages})
}
