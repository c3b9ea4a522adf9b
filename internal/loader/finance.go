package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cloo-solutions/finrag/internal/domain"
)

const defaultYahooFinanceURL = "https://query1.finance.yahoo.com"

var ErrNoQuoteData = errors.New("no quote data returned")

// FinanceLoader renders the quote metadata of each ticker symbol as "key: value" lines.
type FinanceLoader struct {
	symbols []string
	http    *httpSource
}

func NewFinanceLoader(symbols []string, opts HTTPOptions) *FinanceLoader {
	return &FinanceLoader{
		symbols: symbols,
		http:    newHTTPSource(opts, defaultYahooFinanceURL, 2),
	}
}

func (l *FinanceLoader) Name() string { return "yFinance" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta map[string]interface{} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (l *FinanceLoader) Load(ctx context.Context) Result {
	var res Result
	for _, symbol := range l.symbols {
		text, err := l.fetch(ctx, symbol)
		if err != nil {
			res.fail(symbol, err)
			continue
		}
		res.add(domain.Document{Text: text, Source: "yfinance:" + symbol})
	}
	return res
}

func (l *FinanceLoader) fetch(ctx context.Context, symbol string) (string, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", l.http.baseURL, url.PathEscape(symbol))

	var resp chartResponse
	if err := l.http.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	if resp.Chart.Error != nil {
		return "", fmt.Errorf("api error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Meta) == 0 {
		return "", ErrNoQuoteData
	}

	text := formatQuote(resp.Chart.Result[0].Meta)
	if text == "" {
		return "", ErrNoQuoteData
	}
	return text, nil
}

// formatQuote keeps scalar fields only, one per line, sorted by key.
func formatQuote(meta map[string]interface{}) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		var value string
		switch v := meta[k].(type) {
		case string:
			value = v
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			value = strconv.FormatBool(v)
		default:
			continue
		}
		lines = append(lines, k+": "+value)
	}
	return strings.Join(lines, "\n")
}
