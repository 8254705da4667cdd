package hub

import (
	"log/slog"

	"github.com/ercanvas/locamoo/internal/protocol"
)

// Voice rooms track who should be told about joins and departures.
// They do not gate signaling relay; see handleVoiceSignal.

// handleVoiceJoin adds the sender to a room and notifies the other
// participants. The joiner is never notified about itself.
func (h *Hub) handleVoiceJoin(c *Client, env *protocol.Envelope) {
	if env.RoomID == "" {
		h.logger.Warn("voice join without room id", slog.String("handle", env.Username))
		return
	}

	room := h.rooms[env.RoomID]
	if room == nil {
		room = make(map[string]bool)
		h.rooms[env.RoomID] = room
	}
	if room[env.Username] {
		return
	}
	room[env.Username] = true

	h.notifyRoom(env.RoomID, env.Username, protocol.TypeVoiceUserJoined)
	h.logger.Info("voice room joined",
		slog.String("room", env.RoomID),
		slog.String("handle", env.Username),
		slog.Int("participants", len(room)))
}

// handleVoiceLeave removes the sender from a room, deleting the room once
// it empties and notifying the remaining participants otherwise.
func (h *Hub) handleVoiceLeave(c *Client, env *protocol.Envelope) {
	h.removeFromRoom(env.RoomID, env.Username)
}

func (h *Hub) removeFromRoom(roomID, handle string) {
	room := h.rooms[roomID]
	if room == nil || !room[handle] {
		return
	}
	delete(room, handle)

	if len(room) == 0 {
		delete(h.rooms, roomID)
		h.logger.Info("voice room deleted", slog.String("room", roomID))
		return
	}
	h.notifyRoom(roomID, handle, protocol.TypeVoiceUserLeft)
}

// leaveAllRooms removes a disconnected handle from every room it was in
func (h *Hub) leaveAllRooms(handle string) {
	for roomID, room := range h.rooms {
		if room[handle] {
			h.removeFromRoom(roomID, handle)
		}
	}
}

// notifyRoom tells everyone in a room (except the subject) about a join
// or departure
func (h *Hub) notifyRoom(roomID, subject string, kind protocol.MessageType) {
	room := h.rooms[roomID]
	for participant := range room {
		if participant == subject {
			continue
		}
		target, ok := h.conns[participant]
		if !ok {
			continue
		}
		h.push(target, protocol.VoiceRoomEvent{Type: kind, Username: subject})
	}
}
