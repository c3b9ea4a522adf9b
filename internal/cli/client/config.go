package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GlobalConfig is what `finrag auth login` remembers between runs.
type GlobalConfig struct {
	APIKey string `json:"api_key,omitempty"`
	APIURL string `json:"api_url"`
}

// configPath locates config.json; tests swap it for a temp path.
var configPath = userConfigPath

func userConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, "finrag", "config.json"), nil
}

// LoadGlobalConfig returns the saved login, or nil when there is none.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &GlobalConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveGlobalConfig replaces config.json. The file holds a key, so it is
// readable by the owner only.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DeleteGlobalConfig forgets the saved login. Deleting nothing is not an error.
func DeleteGlobalConfig() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// CredentialSource is where the server URL and key were found
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceDefault      CredentialSource = "default"
)

// Settings is the resolved server location and optional key.
type Settings struct {
	Source CredentialSource
	APIURL string
	APIKey string
}

// ResolveSettings resolves the API URL and key independently, each with the
// cascade flag, env, global config, default.
func ResolveSettings(flagAPIKey, flagAPIURL string) (Settings, error) {
	global, err := LoadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	settings := Settings{APIKey: firstNonEmpty(flagAPIKey, os.Getenv(envAPIKey), global.APIKey)}

	switch {
	case flagAPIURL != "":
		settings.Source, settings.APIURL = SourceFlag, flagAPIURL
	case os.Getenv(envAPIURL) != "":
		settings.Source, settings.APIURL = SourceEnv, os.Getenv(envAPIURL)
	case global.APIURL != "":
		settings.Source, settings.APIURL = SourceGlobalConfig, global.APIURL
	default:
		settings.Source, settings.APIURL = SourceDefault, defaultAPIURL
	}

	return settings, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
