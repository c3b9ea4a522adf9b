package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage saved server settings",
		Long:  "Save, clear, and show the server URL and API key used by the finrag CLI",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var apiKey string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save server URL and API key",
		Long:  "Store the server URL and optional API key in the global config (~/.config/finrag/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, APIURL: apiURL}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved settings for", apiURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key, if the server requires one")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")
			return nil
		},
	}
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which server the CLI talks to",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			flagKey, _ := cmd.Flags().GetString("api-key")
			flagURL, _ := cmd.Flags().GetString("api-url")

			settings, err := ResolveSettings(flagKey, flagURL)
			if err != nil {
				return err
			}

			if outputJSON {
				data, err := json.MarshalIndent(map[string]interface{}{
					"source":  string(settings.Source),
					"api_url": settings.APIURL,
					"api_key": maskAPIKey(settings.APIKey),
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\n", settings.Source)
			fmt.Fprintf(cmd.OutOrStdout(), "API URL: %s\n", settings.APIURL)
			fmt.Fprintf(cmd.OutOrStdout(), "API Key: %s\n", maskAPIKey(settings.APIKey))
			return nil
		},
	}
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
