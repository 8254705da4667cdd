package hub

import (
	"github.com/ercanvas/locamoo/internal/protocol"
)

// Point-to-point relay: look the recipient up in the registry, forward a
// reshaped envelope if present, drop silently if not. An offline recipient
// is not an error: no retry, no queuing, nothing back to the sender.

// handleChatMessage relays a one-to-one chat message. The from field and
// timestamp are stamped server-side; the client's values are ignored.
func (h *Hub) handleChatMessage(c *Client, env *protocol.Envelope) {
	target, ok := h.conns[env.To]
	if !ok {
		return
	}
	h.push(target, protocol.DirectChat{
		Type:      protocol.TypeChatMessage,
		From:      env.Username,
		Message:   env.Message,
		Timestamp: h.clock.Now(),
	})
}

func (h *Hub) handleFriendRequest(c *Client, env *protocol.Envelope) {
	h.relayNotification(env, protocol.NotificationFriendRequest)
}

func (h *Hub) handleFriendAccept(c *Client, env *protocol.Envelope) {
	h.relayNotification(env, protocol.NotificationFriendAccepted)
}

func (h *Hub) relayNotification(env *protocol.Envelope, kind string) {
	target, ok := h.conns[env.To]
	if !ok {
		return
	}
	h.push(target, protocol.Notification{
		Type:             protocol.TypeNotification,
		NotificationType: kind,
		From:             env.Username,
	})
}

// handleVoiceSignal relays an offer, answer or ICE candidate directly to
// the addressed handle. The payload is opaque to the relay; only from is
// rewritten to the verified sender. Signaling is deliberately not scoped
// to voice room membership.
func (h *Hub) handleVoiceSignal(c *Client, env *protocol.Envelope) {
	target, ok := h.conns[env.To]
	if !ok {
		return
	}
	h.push(target, protocol.VoiceSignal{
		Type:      env.Type,
		From:      env.Username,
		Offer:     env.Offer,
		Answer:    env.Answer,
		Candidate: env.Candidate,
	})
}
