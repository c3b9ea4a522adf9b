package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF to the document directory",
		Long:  "Uploads a PDF to the server. It is picked up by the next index build.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return fmt.Errorf("only .pdf files can be uploaded")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var onProgress ProgressFunc
			if !quiet {
				onProgress = func(current, total int64) {
					if total > 0 {
						fmt.Fprintf(os.Stderr, "\ruploading %s: %d%%", filepath.Base(path), current*100/total)
					}
				}
			}

			result, err := api.Upload(cmd.Context(), path, onProgress)
			if !quiet {
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			if result.JobID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (reindex job %s)\n", filepath.Base(path), result.Status, result.JobID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", filepath.Base(path), result.Status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print upload progress")

	return cmd
}
