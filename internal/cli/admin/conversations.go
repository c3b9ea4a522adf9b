package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cloo-solutions/finrag/internal/config"
	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/repository"
	"github.com/spf13/cobra"
)

// ConversationsCmd returns the conversations command
func ConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List the conversation log from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pool, err := openDatabase(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer pool.Close()

			conversations, err := repository.NewConversationRepository(pool).List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			return printConversations(cmd.OutOrStdout(), conversations, outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func printConversations(w io.Writer, conversations []*domain.Conversation, outputJSON bool) error {
	if outputJSON {
		type row struct {
			ID        int64  `json:"id"`
			Query     string `json:"query"`
			Response  string `json:"response"`
			CreatedAt string `json:"created_at"`
		}
		rows := make([]row, 0, len(conversations))
		for _, c := range conversations {
			rows = append(rows, row{ID: c.ID, Query: c.Query, Response: c.Response, CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339)})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal conversations: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(conversations) == 0 {
		fmt.Fprintln(w, "No conversations")
		return nil
	}

	for _, c := range conversations {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.CreatedAt.UTC().Format(time.RFC3339), c.Query)
	}
	fmt.Fprintf(w, "\n%d conversations\n", len(conversations))
	return nil
}
