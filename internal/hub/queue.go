package hub

import (
	"log/slog"

	"github.com/ercanvas/locamoo/internal/protocol"
)

// handleJoinQueue appends the sender to the matchmaking queue and attempts
// a pairing. Joining twice with the same handle is a no-op.
func (h *Hub) handleJoinQueue(c *Client, env *protocol.Envelope) {
	for _, entry := range h.queue {
		if entry.handle == env.Username {
			return
		}
	}
	h.queue = append(h.queue, &queueEntry{handle: env.Username, client: c})
	h.logger.Info("player queued",
		slog.String("handle", env.Username),
		slog.Int("queue_len", len(h.queue)))

	h.tryMatch()
}

// handleLeaveQueue removes the sender from the queue; absent is a no-op
func (h *Hub) handleLeaveQueue(c *Client, env *protocol.Envelope) {
	h.dequeueHandle(env.Username)
}

// tryMatch pairs the two longest-waiting players for as long as the queue
// holds at least two entries. Both entries are consumed before any store
// call so a pairing can never be observed half-formed.
func (h *Hub) tryMatch() {
	for len(h.queue) >= 2 {
		first, second := h.queue[0], h.queue[1]
		h.queue = h.queue[2:]

		firstProfile := h.lookupProfile(first.handle)
		secondProfile := h.lookupProfile(second.handle)

		h.push(first.client, protocol.NewMatchFound(secondProfile))
		h.push(second.client, protocol.NewMatchFound(firstProfile))

		h.logger.Info("match formed",
			slog.String("player1", first.handle),
			slog.String("player2", second.handle))
	}
}

// dequeueHandle removes every queue entry for a handle
func (h *Hub) dequeueHandle(handle string) {
	kept := h.queue[:0]
	for _, entry := range h.queue {
		if entry.handle != handle {
			kept = append(kept, entry)
		}
	}
	h.queue = kept
}

// dropQueueEntries removes every queue entry held by a specific connection
func (h *Hub) dropQueueEntries(c *Client) {
	kept := h.queue[:0]
	for _, entry := range h.queue {
		if entry.client != c {
			kept = append(kept, entry)
		}
	}
	h.queue = kept
}
