package cli

import (
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Global chat operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Fetch the recent global chat window",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChatHistoryResult

			if err := client.Get("/api/chat/global", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}
