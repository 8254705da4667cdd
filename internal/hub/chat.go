package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/protocol"
)

// handleGlobalChat moderates, persists and broadcasts a global chat
// message. A sender that does not resolve to a user record is treated as
// malformed input: logged and dropped, no error back to the client.
func (h *Hub) handleGlobalChat(c *Client, env *protocol.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.StoreTimeout)
	defer cancel()

	profile, err := h.store.GetPlayerProfile(ctx, env.Username)
	if err != nil {
		h.logger.Error("global chat from unresolvable sender",
			slog.String("handle", env.Username),
			slog.Any("error", err))
		return
	}

	msg := &model.ChatMessage{
		Username:  env.Username,
		Message:   h.filter.Censor(env.Message),
		Timestamp: h.clock.Now(),
		PhotoURL:  profile.PhotoURL,
		Role:      profile.Role,
	}

	if err := h.store.AppendGlobalChat(ctx, msg); err != nil {
		h.logger.Error("global chat persist failed",
			slog.String("handle", env.Username),
			slog.Any("error", err))
		return
	}

	h.broadcastAll(protocol.NewGlobalChat(msg))
}

// broadcastAll sends one envelope to every currently connected socket,
// not just queued or previously-chatted ones.
func (h *Hub) broadcastAll(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal broadcast envelope", slog.Any("error", err))
		return
	}
	for _, c := range h.conns {
		c.enqueue(data, h.logger)
	}
}
