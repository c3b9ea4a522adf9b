package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultSources(t *testing.T) {
	cfg := &Config{
		WikiTopics:    []string{"Investment"},
		NewsQuery:     "stock market",
		TickerSymbols: []string{"AAPL", "MSFT"},
	}

	src := cfg.DefaultSources()
	assert.Equal(t, []string{"Investment"}, src.WikiTopics)
	assert.Equal(t, "stock market", src.NewsQuery)
	assert.Equal(t, []string{"AAPL", "MSFT"}, src.TickerSymbols)

	src.WikiTopics[0] = "changed"
	assert.Equal(t, "Investment", cfg.WikiTopics[0])
}

func TestLoadSources_OverridesOnlyGivenKeys(t *testing.T) {
	base := Sources{
		WikiTopics:    []string{"Investment"},
		NewsQuery:     "stock market",
		TickerSymbols: []string{"AAPL"},
	}
	path := writeSources(t, `
wiki_topics:
  - Bond_(finance)
  - Dividend
ticker_symbols: []
`)

	src, err := LoadSources(path, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bond_(finance)", "Dividend"}, src.WikiTopics)
	assert.Equal(t, "stock market", src.NewsQuery)
	assert.Empty(t, src.TickerSymbols)
	assert.False(t, src.SkipPDFs)
}

func TestLoadSources_SkipPDFs(t *testing.T) {
	path := writeSources(t, "skip_pdfs: true\nnews_query: earnings\n")

	src, err := LoadSources(path, Sources{NewsQuery: "stock market"})
	require.NoError(t, err)

	assert.True(t, src.SkipPDFs)
	assert.Equal(t, "earnings", src.NewsQuery)
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"), Sources{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadSources_InvalidYAML(t *testing.T) {
	path := writeSources(t, "wiki_topics: [unclosed")

	_, err := LoadSources(path, Sources{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse sources file")
}
