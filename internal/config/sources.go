package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources lists what the ingest step pulls in besides the PDFs in DocsDir.
type Sources struct {
	WikiTopics    []string `yaml:"wiki_topics"`
	NewsQuery     string   `yaml:"news_query"`
	TickerSymbols []string `yaml:"ticker_symbols"`
	SkipPDFs      bool     `yaml:"skip_pdfs"`
}

// DefaultSources returns the sources configured through the environment.
func (c *Config) DefaultSources() Sources {
	return Sources{
		WikiTopics:    append([]string(nil), c.WikiTopics...),
		NewsQuery:     c.NewsQuery,
		TickerSymbols: append([]string(nil), c.TickerSymbols...),
	}
}

// LoadSources reads a YAML sources file. Keys missing from the file keep the
// values from base; a missing file is an error since the path was asked for explicitly.
func LoadSources(path string, base Sources) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Sources{}, fmt.Errorf("sources file %s does not exist", path)
		}
		return Sources{}, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file Sources
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Sources{}, fmt.Errorf("failed to parse sources file: %w", err)
	}

	out := base
	if file.WikiTopics != nil {
		out.WikiTopics = file.WikiTopics
	}
	if file.NewsQuery != "" {
		out.NewsQuery = file.NewsQuery
	}
	if file.TickerSymbols != nil {
		out.TickerSymbols = file.TickerSymbols
	}
	out.SkipPDFs = file.SkipPDFs

	return out, nil
}
