package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ercanvas/locamoo/internal/protocol"
)

const (
	pingPeriod   = 15 * time.Second
	writeWait    = 5 * time.Second
	maxEnvelope  = 64 << 10 // 64KB
	closeTimeout = time.Second
)

// Client is one live websocket connection. The handle field is owned by
// the hub run loop and is empty until the first envelope binds one.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	limiter *rate.Limiter

	handle string // hub run loop only

	closeOnce sync.Once
	cancel    context.CancelFunc
}

// ServeWS upgrades the request and starts the connection's pumps. The
// connection stays anonymous until its first envelope supplies a handle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	// The pumps outlive the HTTP handler, so they cannot use r.Context.
	// Deriving from the hub lifetime closes them when the run loop exits.
	connCtx, cancel := context.WithCancel(h.lifetime)

	c := &Client{
		id:      uuid.NewString(),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBuffer),
		limiter: rate.NewLimiter(h.cfg.RateLimit, h.cfg.RateBurst),
		cancel:  cancel,
	}

	h.logger.Info("websocket connected", slog.String("conn", c.id))

	go c.readPump(connCtx)
	go c.writePump(connCtx)
}

// close tears the connection down exactly once and tells the hub so its
// registry, queue and room state can be cleaned.
func (c *Client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.Close(code, reason)
		}
		// Once the run loop has exited nothing drains closed; giving up on
		// lifetime keeps pump goroutines from blocking here forever.
		select {
		case c.hub.closed <- c:
		case <-c.hub.lifetime.Done():
		}
	})
}

// detach closes a superseded connection. The hub run loop calls this while
// replacing a registry entry; the socket's own close event still fires and
// is handled with identity checks.
func (c *Client) detach(reason string) {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.Close(websocket.StatusPolicyViolation, reason)
		}
	})
}

// readPump decodes inbound envelopes and hands them to the hub. Malformed
// envelopes are logged and dropped without closing the connection;
// over-limit senders are throttled the same way.
func (c *Client) readPump(ctx context.Context) {
	defer c.close(websocket.StatusNormalClosure, "read loop closed")

	c.conn.SetReadLimit(maxEnvelope)

	for {
		_, payload, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			c.hub.logger.Warn("rate limit exceeded, envelope dropped",
				slog.String("conn", c.id))
			continue
		}

		env, err := protocol.Decode(payload)
		if err != nil {
			c.hub.logger.Warn("malformed envelope dropped",
				slog.String("conn", c.id),
				slog.Any("error", err))
			continue
		}

		select {
		case c.hub.inbound <- inboundEnvelope{client: c, env: env}:
		case <-ctx.Done():
			return
		}
	}
}

// writePump drains the send channel to the socket and keeps the
// connection alive with pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close(websocket.StatusNormalClosure, "write loop closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// enqueue queues an outbound frame, dropping it if the client cannot keep
// up. Dead sockets are reaped by the close handler, never by the send path.
func (c *Client) enqueue(data []byte, logger *slog.Logger) {
	select {
	case c.send <- data:
	default:
		logger.Warn("send buffer full, frame dropped",
			slog.String("conn", c.id),
			slog.String("handle", c.handle))
	}
}
