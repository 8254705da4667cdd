package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the relay socket",
	}

	cmd.PersistentFlags().StringVar(&as, "as", "", "Username to send as (defaults to --user)")

	cmd.AddCommand(&cobra.Command{
		Use:   "global <message>",
		Short: "Send a global chat message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendEnvelope(senderName(as), map[string]string{
				"type":    "GLOBAL_CHAT",
				"message": args[0],
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dm <to> <message>",
		Short: "Send a direct chat message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendEnvelope(senderName(as), map[string]string{
				"type":    "CHAT_MESSAGE",
				"to":      args[0],
				"message": args[1],
			})
		},
	})

	return cmd
}

func senderName(as string) string {
	if as != "" {
		return as
	}
	return cfg.User
}

// sendEnvelope dials the relay, writes one envelope and disconnects
func sendEnvelope(username string, fields map[string]string) error {
	if username == "" {
		return fmt.Errorf("a sender is required (--as or --user)")
	}

	wsURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/ws"
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	fields["username"] = username
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	NewOutput(cfg.Output).PrintMessage("Sent")
	return nil
}
