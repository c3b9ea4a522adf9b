package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a financial question",
		Long:  "Sends the question to the finrag server and prints the answer built from the indexed documents.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			answer, err := api.Ask(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			if outputJSON {
				data, err := json.MarshalIndent(map[string]string{"query": question, "response": answer}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	return cmd
}
