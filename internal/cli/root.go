package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "locamoo",
		Short: "CLI tool for the locamoo relay server",
		Long: `locamoo is a CLI tool for the relay's REST API and websocket endpoint.

It can check server health, fetch recent global chat, manage the hidden-word
block-list as a moderator, and attach a live listener to the relay socket.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.User)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LOCAMOO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.User, "user", cfg.User, "Username sent as identity (env: LOCAMOO_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newListenCmd())
	rootCmd.AddCommand(newSendCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
