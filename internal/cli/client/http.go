package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIKey = "FINRAG_API_KEY"
	envAPIURL = "FINRAG_API_URL"

	defaultAPIURL = "http://localhost:8000"
)

type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient from the root command's flags,
// then env (including .env), then global config.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var flagKey, flagURL string
	if cmd != nil {
		flagKey, _ = cmd.Flags().GetString("api-key")
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	settings, err := ResolveSettings(flagKey, flagURL)
	if err != nil {
		return nil, err
	}

	return NewAPIClientWithConfig(settings.APIKey, settings.APIURL), nil
}

// NewAPIClientWithConfig creates an APIClient with explicit settings. An empty
// key sends no Authorization header.
func NewAPIClientWithConfig(apiKey, baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Conversation is one entry of the server's conversation log.
type Conversation struct {
	ID        int64  `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// UploadResult is the server's reply to an upload.
type UploadResult struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
}

// Ask posts a question and returns the answer text.
func (c *APIClient) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/query", "application/json", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Conversations returns the conversation log in insertion order.
func (c *APIClient) Conversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends a file as the multipart "file" field.
func (c *APIClient) Upload(ctx context.Context, filePath string, onProgress ProgressFunc) (*UploadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{reader: file, total: stat.Size(), onProgress: onProgress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload", writer.FormDataContentType(), pr, &out); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ProgressFunc is a callback for reporting upload progress.
type ProgressFunc func(current, total int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	current    int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	if pr.onProgress != nil {
		pr.onProgress(pr.current, pr.total)
	}
	return n, err
}
