package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/protocol"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/storage"
)

// Config holds tunables for the relay hub
type Config struct {
	// StoreTimeout bounds each document store call made from the event loop
	StoreTimeout time.Duration

	// SendBuffer is the per-client outbound channel capacity
	SendBuffer int

	// InboxBuffer is the capacity of the hub's inbound envelope channel
	InboxBuffer int

	// RateLimit / RateBurst throttle inbound envelopes per connection
	RateLimit rate.Limit
	RateBurst int
}

// DefaultConfig returns sensible defaults for hub configuration
func DefaultConfig() Config {
	return Config{
		StoreTimeout: 5 * time.Second,
		SendBuffer:   256,
		InboxBuffer:  256,
		RateLimit:    rate.Limit(20),
		RateBurst:    40,
	}
}

// inboundEnvelope pairs a decoded envelope with the connection it came from
type inboundEnvelope struct {
	client *Client
	env    *protocol.Envelope
}

// queueEntry is one waiting player. The socket reference is kept alongside
// the handle so a superseded connection's entries can be dropped without
// touching the handle's new connection.
type queueEntry struct {
	handle string
	client *Client
}

type handlerFunc func(*Client, *protocol.Envelope)

// Hub is the in-memory relay coordinating matchmaking, presence, chat
// fan-out and voice signaling. All connection state lives in process memory
// and is rebuilt from nothing on restart.
//
// A single Run goroutine owns every mutable structure below; clients and
// timers only communicate with it through the inbound and closed channels.
type Hub struct {
	logger *slog.Logger
	store  storage.Store
	filter *moderation.Filter
	clock  clock.Clock
	cfg    Config

	inbound chan inboundEnvelope
	closed  chan *Client

	// lifetime parents every connection's pump context; stop fires when the
	// run loop exits so live sockets shut down with the hub.
	lifetime context.Context
	stop     context.CancelFunc

	// State owned by the Run goroutine. Never touched elsewhere.
	conns    map[string]*Client         // handle -> live connection
	queue    []*queueEntry              // FIFO matchmaking queue
	rooms    map[string]map[string]bool // room id -> participant handles
	handlers map[protocol.MessageType]handlerFunc
}

// New creates a relay hub. Call Run to start processing.
func New(store storage.Store, filter *moderation.Filter, clk clock.Clock, logger *slog.Logger, cfg Config) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg = DefaultConfig()
	}

	h := &Hub{
		logger:  logger.With(slog.String("component", "hub")),
		store:   store,
		filter:  filter,
		clock:   clk,
		cfg:     cfg,
		inbound: make(chan inboundEnvelope, cfg.InboxBuffer),
		closed:  make(chan *Client, cfg.InboxBuffer),
		conns:   make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
	h.lifetime, h.stop = context.WithCancel(context.Background())

	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.TypeJoinQueue:     h.handleJoinQueue,
		protocol.TypeLeaveQueue:    h.handleLeaveQueue,
		protocol.TypeChatMessage:   h.handleChatMessage,
		protocol.TypeFriendRequest: h.handleFriendRequest,
		protocol.TypeFriendAccept:  h.handleFriendAccept,
		protocol.TypeGlobalChat:    h.handleGlobalChat,
		protocol.TypeVoiceJoin:     h.handleVoiceJoin,
		protocol.TypeVoiceLeave:    h.handleVoiceLeave,
		protocol.TypeVoiceOffer:    h.handleVoiceSignal,
		protocol.TypeVoiceAnswer:   h.handleVoiceSignal,
		protocol.TypeVoiceICE:      h.handleVoiceSignal,
	}

	return h
}

// Run is the hub's event loop and the single owner of its state.
// It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("relay hub started")
	for {
		select {
		case <-ctx.Done():
			// Cancelling lifetime fails every pump's pending read, so each
			// connection tears itself down without the run loop.
			h.stop()
			h.logger.Info("relay hub stopped")
			return
		case in := <-h.inbound:
			h.dispatch(in.client, in.env)
		case c := <-h.closed:
			h.disconnect(c)
		}
	}
}

// presenceStats is the aggregate snapshot broadcast to every client
type presenceStats struct {
	online int
	queued int
}

func (h *Hub) stats() presenceStats {
	return presenceStats{online: len(h.conns), queued: len(h.queue)}
}

// dispatch routes one envelope to its handler. The sender is registered
// first (first envelope carrying a handle creates the registry entry), and
// presence is rebroadcast if the handler changed the aggregate counts.
// A panicking handler is logged and never kills the loop.
func (h *Hub) dispatch(c *Client, env *protocol.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler panic",
				slog.Any("panic", r),
				slog.String("type", string(env.Type)),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	before := h.stats()

	h.bind(c, env.Username)

	handler, ok := h.handlers[env.Type]
	if !ok {
		// Decode already rejects unknown types; this guards handler table drift.
		h.logger.Warn("no handler for envelope type", slog.String("type", string(env.Type)))
		return
	}
	handler(c, env)

	if h.stats() != before {
		h.broadcastPresence()
	}
}

// bind associates a handle with a live connection, last write wins.
// A superseded connection for the same handle is closed outright rather
// than left orphaned.
func (h *Hub) bind(c *Client, handle string) {
	if prev, ok := h.conns[handle]; ok && prev != c {
		h.logger.Info("superseding connection",
			slog.String("handle", handle),
			slog.String("old_conn", prev.id),
			slog.String("new_conn", c.id))
		h.dropQueueEntries(prev)
		prev.detach("session superseded by a new connection")
	}

	// A connection switching handles releases its old registry entry
	if c.handle != "" && c.handle != handle && h.conns[c.handle] == c {
		delete(h.conns, c.handle)
	}

	c.handle = handle
	h.conns[handle] = c
}

// disconnect cleans registry, queue and room state for a closed connection
// and rebroadcasts presence. Identity checks keep a superseded socket's
// close event from disturbing the handle's new connection.
func (h *Hub) disconnect(c *Client) {
	before := h.stats()

	ownsHandle := c.handle != "" && h.conns[c.handle] == c
	if ownsHandle {
		delete(h.conns, c.handle)
		h.leaveAllRooms(c.handle)
	}
	h.dropQueueEntries(c)

	h.logger.Info("connection closed",
		slog.String("conn", c.id),
		slog.String("handle", c.handle),
		slog.Int("online", len(h.conns)))

	if h.stats() != before {
		h.broadcastPresence()
	}
}

// broadcastPresence pushes the current counts to every registered socket.
// Sends are fire-and-forget; a full buffer just drops the update.
func (h *Hub) broadcastPresence() {
	data, err := json.Marshal(protocol.NewStatsUpdate(len(h.conns), len(h.queue)))
	if err != nil {
		h.logger.Error("marshal stats update", slog.Any("error", err))
		return
	}
	for _, c := range h.conns {
		c.enqueue(data, h.logger)
	}
}

// push marshals and queues one envelope for a single connection
func (h *Hub) push(c *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal outbound envelope", slog.Any("error", err))
		return
	}
	c.enqueue(data, h.logger)
}

// lookupProfile fetches a player's public profile, falling back to
// placeholder values when the store cannot resolve the handle.
func (h *Hub) lookupProfile(handle string) *model.PlayerProfile {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.StoreTimeout)
	defer cancel()

	profile, err := h.store.GetPlayerProfile(ctx, handle)
	if err != nil {
		h.logger.Warn("profile lookup failed, using placeholder",
			slog.String("handle", handle),
			slog.Any("error", err))
		return model.PlaceholderProfile(handle)
	}
	return profile
}
