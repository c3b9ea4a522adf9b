// Package loader turns external sources into domain.Documents.
//
// Every loader reports per-item outcomes through Result instead of aborting:
// a PDF that will not parse, a missing wiki topic or an unknown ticker becomes
// a Failure and the remaining items are still loaded.
package loader

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/telemetry"
)

// Loader produces documents from one kind of source.
type Loader interface {
	Name() string
	Load(ctx context.Context) Result
}

// Failure records an item that could not be loaded.
type Failure struct {
	Item string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Item, f.Err)
}

// Result aggregates the documents and failures of one loader run.
type Result struct {
	Source    string
	Documents []domain.Document
	Failures  []Failure
}

func (r *Result) add(doc domain.Document) {
	r.Documents = append(r.Documents, doc)
}

func (r *Result) fail(item string, err error) {
	r.Failures = append(r.Failures, Failure{Item: item, Err: err})
}

// LoadAll runs the loaders in order, logs every failure and returns all results.
// A failing loader never prevents the others from running.
func LoadAll(ctx context.Context, loaders ...Loader) []Result {
	results := make([]Result, 0, len(loaders))
	for _, l := range loaders {
		res := l.Load(ctx)
		res.Source = l.Name()
		for _, f := range res.Failures {
			log.Printf("[%s] skipped %s: %v", l.Name(), f.Item, f.Err)
			telemetry.Breadcrumb(ctx, "loader", fmt.Sprintf("%s skipped %s", l.Name(), f.Error()))
		}
		log.Printf("[%s] loaded %d documents (%d skipped)", l.Name(), len(res.Documents), len(res.Failures))
		results = append(results, res)
	}
	return results
}

// Documents flattens the documents of several results, preserving order.
func Documents(results []Result) []domain.Document {
	var docs []domain.Document
	for _, r := range results {
		docs = append(docs, r.Documents...)
	}
	return docs
}
