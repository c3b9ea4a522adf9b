package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/finrag/internal/cli"
	"github.com/cloo-solutions/finrag/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finragd",
		Short: "Finrag daemon and admin CLI",
		Long:  "Finrag daemon for serving financial Q&A, rebuilding the document index and inspecting the conversation log",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.ConversationsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
