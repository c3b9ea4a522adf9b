package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/finrag/internal/cli"
	"github.com/cloo-solutions/finrag/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "finrag",
		Short: "Finrag CLI - ask questions about financial documents",
		Long: `Finrag CLI talks to a finrag server.

Environment variables:
  FINRAG_API_URL   API base URL (default: http://localhost:8000)
  FINRAG_API_KEY   API key, if the server requires one`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
