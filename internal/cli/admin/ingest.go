package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cloo-solutions/finrag/internal/config"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the vector index from all sources",
		Long: `Loads PDFs from DOCS_DIR, Wikipedia articles, news and stock quotes, splits them into
chunks, embeds them and replaces the whole index in one transaction. Sources that fail are
reported and skipped; the previous index stays in place if nothing could be loaded.`,
		RunE: runIngest,
	}

	cmd.Flags().String("sources", "", "YAML file overriding wiki_topics, news_query, ticker_symbols, skip_pdfs")
	cmd.Flags().String("docs-dir", "", "Directory of PDFs to index (overrides DOCS_DIR)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")
	cmd.Flags().Bool("output", false, "Output the build report as JSON")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dir, ok := stringFlag(cmd.Flags(), "docs-dir"); ok {
		cfg.DocsDir = dir
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	sourcesPath, _ := cmd.Flags().GetString("sources")
	sources, err := resolveSources(cfg, sourcesPath)
	if err != nil {
		return err
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	pool, err := openDatabase(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer pool.Close()

	aiClient, err := newOpenAIClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create openai client: %w", err)
	}
	embedder, closeCache := newEmbedder(ctx, cfg, aiClient)
	defer closeCache()

	indexer, err := newIndexer(cfg, pool, embedder, sources)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	report, err := indexer.Build(ctx)
	outputJSON, _ := cmd.Flags().GetBool("output")
	if report != nil {
		if outputJSON {
			if werr := writeReportJSON(cmd.OutOrStdout(), report); werr != nil {
				return werr
			}
		} else {
			writeReport(cmd.OutOrStdout(), report)
		}
	}
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	return nil
}

func writeReport(w io.Writer, report *service.BuildReport) {
	for _, src := range report.Sources {
		fmt.Fprintf(w, "%-10s %4d documents, %d failures\n", src.Source, len(src.Documents), len(src.Failures))
		for _, f := range src.Failures {
			fmt.Fprintf(w, "    skipped %s: %v\n", f.Item, f.Err)
		}
	}
	fmt.Fprintf(w, "Loaded %d documents\n", report.Documents)
	fmt.Fprintf(w, "Indexed %d chunks in %s\n", report.Chunks, report.Duration.Round(time.Millisecond))
}

type reportSource struct {
	Source    string   `json:"source"`
	Documents int      `json:"documents"`
	Failures  []string `json:"failures,omitempty"`
}

func writeReportJSON(w io.Writer, report *service.BuildReport) error {
	out := struct {
		Documents  int            `json:"documents"`
		Chunks     int            `json:"chunks"`
		DurationMS int64          `json:"duration_ms"`
		Sources    []reportSource `json:"sources"`
	}{
		Documents:  report.Documents,
		Chunks:     report.Chunks,
		DurationMS: report.Duration.Milliseconds(),
		Sources:    make([]reportSource, 0, len(report.Sources)),
	}

	for _, src := range report.Sources {
		rs := reportSource{Source: src.Source, Documents: len(src.Documents)}
		for _, f := range src.Failures {
			rs.Failures = append(rs.Failures, f.Error())
		}
		out.Sources = append(out.Sources, rs)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
