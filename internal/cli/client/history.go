package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past questions and answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			history, err := api.Conversations(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch history: %w", err)
			}

			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}

			if outputJSON {
				data, err := json.MarshalIndent(history, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations yet")
				return nil
			}

			for _, c := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\nQ: %s\nA: %s\n\n", c.ID, c.CreatedAt, c.Query, c.Response)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the most recent N conversations")

	return cmd
}
