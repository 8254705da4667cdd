package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/storage/memory"
	"github.com/ercanvas/locamoo/internal/testutil"
)

// These tests exercise the live read/write pumps end to end: a running hub
// behind an httptest server, dialled with real websocket connections.

type socketServer struct {
	hub    *Hub
	url    string
	cancel context.CancelFunc
}

func startSocketServer(t *testing.T, cfg Config) *socketServer {
	t.Helper()

	logger := testutil.NopLogger()
	store := memory.New()
	filter := moderation.NewFilter(store, logger, time.Minute)
	h := New(store, filter, clock.New(), logger, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &socketServer{
		hub:    h,
		url:    strings.Replace(srv.URL, "http://", "ws://", 1),
		cancel: cancel,
	}
}

func (ss *socketServer) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, ss.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	})
	return conn
}

func writeFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, fields map[string]string) {
	t.Helper()

	data, err := json.Marshal(fields)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func readUntilFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, wanted string) map[string]any {
	t.Helper()

	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		if frame["type"] == wanted {
			return frame
		}
	}
}

func TestReadPumpSurvivesMalformedFrames(t *testing.T) {
	ss := startSocketServer(t, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := ss.dial(t, ctx)

	// garbage first, then frames that fail envelope validation
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json at all")))
	writeFrame(t, ctx, conn, map[string]string{"type": "NO_SUCH_TYPE", "username": "alice"})
	writeFrame(t, ctx, conn, map[string]string{"type": "JOIN_QUEUE"})

	// a valid envelope on the same connection is still processed, so the
	// malformed ones were dropped without closing the socket
	writeFrame(t, ctx, conn, map[string]string{"type": "JOIN_QUEUE", "username": "alice"})

	frame := readUntilFrame(t, ctx, conn, "STATS_UPDATE")
	assert.Equal(t, float64(1), frame["onlinePlayers"])
	assert.Equal(t, float64(1), frame["inQueue"])
}

func TestReadPumpRateLimitDropsWithoutClosing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = rate.Limit(1)
	cfg.RateBurst = 1
	ss := startSocketServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bob := ss.dial(t, ctx)
	writeFrame(t, ctx, bob, map[string]string{"type": "LEAVE_QUEUE", "username": "bob"})
	readUntilFrame(t, ctx, bob, "STATS_UPDATE")

	alice := ss.dial(t, ctx)
	writeFrame(t, ctx, alice, map[string]string{"type": "LEAVE_QUEUE", "username": "alice"})

	// the registration envelope spent alice's only token, so this direct
	// message must be dropped by the limiter rather than relayed
	writeFrame(t, ctx, alice, map[string]string{
		"type": "CHAT_MESSAGE", "username": "alice", "to": "bob", "message": "throttled",
	})

	// after the bucket refills the connection is still open and relaying
	time.Sleep(1500 * time.Millisecond)
	writeFrame(t, ctx, alice, map[string]string{
		"type": "CHAT_MESSAGE", "username": "alice", "to": "bob", "message": "delivered",
	})

	frame := readUntilFrame(t, ctx, bob, "CHAT_MESSAGE")
	assert.Equal(t, "delivered", frame["message"], "the throttled envelope must never arrive")
	assert.Equal(t, "alice", frame["from"])
}

func TestHubShutdownClosesLiveConnections(t *testing.T) {
	ss := startSocketServer(t, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := ss.dial(t, ctx)
	writeFrame(t, ctx, conn, map[string]string{"type": "LEAVE_QUEUE", "username": "alice"})
	readUntilFrame(t, ctx, conn, "STATS_UPDATE")

	ss.cancel()

	// the server side must close the socket; hitting our own read deadline
	// instead would mean the connection outlived the hub
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
