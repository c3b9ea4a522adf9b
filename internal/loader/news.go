package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/cloo-solutions/finrag/internal/domain"
)

const (
	defaultNewsAPIURL = "https://newsapi.org/v2"
	newsPageSize      = 5
)

var ErrNoNewsAPIKey = errors.New("NEWSAPI_KEY not set")

// NewsLoader runs a single NewsAPI search. Any request failure yields zero documents.
type NewsLoader struct {
	query  string
	apiKey string
	http   *httpSource
}

func NewNewsLoader(query, apiKey string, opts HTTPOptions) *NewsLoader {
	return &NewsLoader{
		query:  query,
		apiKey: apiKey,
		http:   newHTTPSource(opts, defaultNewsAPIURL, 1),
	}
}

func (l *NewsLoader) Name() string { return "NewsAPI" }

type newsResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
	} `json:"articles"`
}

func (l *NewsLoader) Load(ctx context.Context) Result {
	var res Result

	if l.apiKey == "" {
		res.fail(l.query, ErrNoNewsAPIKey)
		return res
	}

	params := url.Values{}
	params.Set("q", l.query)
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprint(newsPageSize))
	params.Set("apiKey", l.apiKey)

	var resp newsResponse
	if err := l.http.getJSON(ctx, l.http.baseURL+"/everything?"+params.Encode(), &resp); err != nil {
		res.fail(l.query, err)
		return res
	}
	if resp.Status != "ok" {
		res.fail(l.query, fmt.Errorf("api status %q: %s %s", resp.Status, resp.Code, resp.Message))
		return res
	}

	for _, article := range resp.Articles {
		if article.URL == "" {
			res.fail(article.Title, errors.New("article has no url"))
			continue
		}
		res.add(domain.Document{
			Text:   article.Description + "\n" + article.Content,
			Source: article.URL,
		})
	}

	return res
}
