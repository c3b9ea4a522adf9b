package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	name   string
	result Result
}

func (l staticLoader) Name() string                  { return l.name }
func (l staticLoader) Load(_ context.Context) Result { return l.result }

func TestLoadAll_IsolatesFailingLoader(t *testing.T) {
	broken := staticLoader{
		name: "broken",
		result: Result{
			Failures: []Failure{{Item: "everything", Err: errors.New("boom")}},
		},
	}
	healthy := staticLoader{
		name: "healthy",
		result: Result{
			Documents: []domain.Document{
				{Text: "one", Source: "a"},
				{Text: "two", Source: "b"},
			},
		},
	}

	results := LoadAll(context.Background(), broken, healthy)

	require.Len(t, results, 2)
	assert.Equal(t, "broken", results[0].Source)
	assert.Empty(t, results[0].Documents)
	assert.Len(t, results[0].Failures, 1)
	assert.Equal(t, "healthy", results[1].Source)

	docs := Documents(results)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Source)
	assert.Equal(t, "b", docs[1].Source)
}

func TestFailure_Error(t *testing.T) {
	f := Failure{Item: "report.pdf", Err: errors.New("bad xref")}
	assert.Equal(t, "report.pdf: bad xref", f.Error())
}
