package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	var joinQueue bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "listen <username>",
		Short: "Attach a live listener to the relay socket",
		Long: `Connect to the relay's websocket endpoint as the given username and
print every frame the server pushes.

Frames include:
  - STATS_UPDATE: presence counts changed
  - MATCH_FOUND: the queue paired you with an opponent
  - GLOBAL_CHAT: a moderated broadcast message
  - CHAT_MESSAGE / NOTIFICATION: direct relays addressed to you
  - VOICE_USER_JOINED / VOICE_USER_LEFT: voice room membership changes

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listen(args[0], joinQueue, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&joinQueue, "join-queue", false, "Join the matchmaking queue after connecting")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output frames as JSON lines")

	return cmd
}

func listen(username string, joinQueue, jsonOutput bool) error {
	wsURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/ws"
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The first envelope binds this socket to the username; joining or
	// leaving the queue both serve as that registration.
	msgType := "LEAVE_QUEUE"
	if joinQueue {
		msgType = "JOIN_QUEUE"
	}
	hello, _ := json.Marshal(map[string]string{"type": msgType, "username": username})
	if err := conn.Write(ctx, websocket.MessageText, hello); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Connected as %s\n", username)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
		printFrame(data, jsonOutput)
	}
}

func printFrame(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var frame map[string]any
	frameType := "?"
	if err := json.Unmarshal(data, &frame); err == nil {
		if t, ok := frame["type"].(string); ok {
			frameType = t
		}
	}

	display := string(data)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", time.Now().Format("2006-01-02 15:04:05"), frameType, display)
}
