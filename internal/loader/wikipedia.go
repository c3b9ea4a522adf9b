package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cloo-solutions/finrag/internal/domain"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

var ErrPageNotFound = errors.New("page not found")

// WikipediaLoader fetches the plain-text extract of each topic page.
type WikipediaLoader struct {
	topics []string
	http   *httpSource
}

func NewWikipediaLoader(topics []string, opts HTTPOptions) *WikipediaLoader {
	return &WikipediaLoader{
		topics: topics,
		http:   newHTTPSource(opts, defaultWikipediaURL, 5),
	}
}

func (l *WikipediaLoader) Name() string { return "Wikipedia" }

type wikiResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (l *WikipediaLoader) Load(ctx context.Context) Result {
	var res Result
	for _, topic := range l.topics {
		content, err := l.fetch(ctx, topic)
		if err != nil {
			res.fail(topic, err)
			continue
		}
		res.add(domain.Document{Text: content, Source: "wikipedia:" + topic})
	}
	return res
}

func (l *WikipediaLoader) fetch(ctx context.Context, topic string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", topic)

	var resp wikiResponse
	if err := l.http.getJSON(ctx, l.http.baseURL+"?"+params.Encode(), &resp); err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if len(resp.Query.Pages) == 0 {
		return "", ErrPageNotFound
	}

	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", ErrPageNotFound
	}
	if strings.TrimSpace(page.Extract) == "" {
		return "", fmt.Errorf("page %q has no content", page.Title)
	}

	return page.Extract, nil
}
