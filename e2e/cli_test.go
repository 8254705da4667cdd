package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ercanvas/locamoo/internal/api"
	"github.com/ercanvas/locamoo/internal/factory"
	"github.com/ercanvas/locamoo/internal/model"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(projectRoot, "bin", "locamoo-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/locamoo")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runAs(user string, args ...string) (string, error) {
	return r.run(append([]string{"--user", user}, args...)...)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	app      *factory.App
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go app.Hub.Run(ctx)
	go app.Filter.Run(ctx)
	go app.Sweeper.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:     testLogger(),
		Store:      app.Store,
		Clock:      app.Clock,
		Hub:        app.Hub,
		Filter:     app.Filter,
		ChatWindow: app.ChatWindow,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func (ts *testServer) saveProfile(t *testing.T, username, role string) {
	t.Helper()
	err := ts.app.Store.SavePlayerProfile(context.Background(), &model.PlayerProfile{
		Username: username,
		PhotoURL: model.DefaultPhotoURL,
		Role:     role,
		Level:    1,
	})
	require.NoError(t, err)
}

func TestCLIHealth(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, output)
	assert.Contains(t, output, `"status": "ok"`)
}

func TestCLIModerationFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	cli := newCLIRunner(t, ts.addr)
	ts.saveProfile(t, "mod", model.RoleModerator)

	// non-moderators are rejected
	output, err := cli.run("words", "list")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.runAs("mod", "words", "add", "spam")
	require.NoError(t, err, output)

	output, err = cli.runAs("mod", "words", "list")
	require.NoError(t, err, output)
	assert.Contains(t, output, `"word": "spam"`)
	assert.Contains(t, output, `"addedBy": "mod"`)

	output, err = cli.runAs("mod", "words", "remove", "spam")
	require.NoError(t, err, output)

	output, err = cli.runAs("mod", "words", "remove", "spam")
	require.Error(t, err)
	assert.Contains(t, output, "WORD_NOT_FOUND")
}

func TestCLIChatHistory(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	cli := newCLIRunner(t, ts.addr)

	err := ts.app.Store.AppendGlobalChat(context.Background(), &model.ChatMessage{
		Username:  "alice",
		Message:   "hello world",
		Timestamp: ts.app.Clock.Now(),
		PhotoURL:  model.DefaultPhotoURL,
		Role:      model.RolePlayer,
	})
	require.NoError(t, err)

	output, err := cli.run("chat", "history")
	require.NoError(t, err, output)
	assert.Contains(t, output, "hello world")
}

// dialSocket connects to the relay and registers the given username
func dialSocket(t *testing.T, ctx context.Context, serverURL, username, msgType string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(serverURL, "http://", "ws://", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)

	hello, err := json.Marshal(map[string]string{"type": msgType, "username": username})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, hello))

	return conn
}

// readUntilType reads frames until one of the wanted type arrives
func readUntilType(t *testing.T, ctx context.Context, conn *websocket.Conn, wanted string) map[string]any {
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

func TestWebsocketMatchmaking(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := dialSocket(t, ctx, ts.addr, "alice", "JOIN_QUEUE")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialSocket(t, ctx, ts.addr, "bob", "JOIN_QUEUE")
	defer bob.Close(websocket.StatusNormalClosure, "")

	aliceMatch := readUntilType(t, ctx, alice, "MATCH_FOUND")
	bobMatch := readUntilType(t, ctx, bob, "MATCH_FOUND")

	assert.Equal(t, "bob", aliceMatch["opponent"].(map[string]any)["username"])
	assert.Equal(t, "alice", bobMatch["opponent"].(map[string]any)["username"])
}

func TestWebsocketGlobalChatBroadcast(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()
	ts.saveProfile(t, "alice", model.RolePlayer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice := dialSocket(t, ctx, ts.addr, "alice", "LEAVE_QUEUE")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialSocket(t, ctx, ts.addr, "bob", "LEAVE_QUEUE")
	defer bob.Close(websocket.StatusNormalClosure, "")

	msg, err := json.Marshal(map[string]string{
		"type":     "GLOBAL_CHAT",
		"username": "alice",
		"message":  "hello everyone",
	})
	require.NoError(t, err)
	require.NoError(t, alice.Write(ctx, websocket.MessageText, msg))

	frame := readUntilType(t, ctx, bob, "GLOBAL_CHAT")
	assert.Equal(t, "alice", frame["username"])
	assert.Equal(t, "hello everyone", frame["message"])
}
