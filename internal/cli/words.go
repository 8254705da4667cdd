package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the hidden-word block-list (moderators only)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hidden words",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HiddenWordsResult

			if err := client.Get("/api/settings/hidden-words", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <word>",
		Short: "Add a hidden word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"word": args[0]}

			if err := client.Post("/api/settings/hidden-words", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Added " + args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <word>",
		Short: "Remove a hidden word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/settings/hidden-words/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Removed " + args[0])
			return nil
		},
	})

	return cmd
}
