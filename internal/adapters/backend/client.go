// Package backend provides the HTTP adapters for the document backend.
// Client implements ports.IngestionService, ports.QueryService and
// ports.HealthChecker against the /upload, /query and /health endpoints.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const (
	moduleBackend  = "BACKEND"
	defaultBaseURL = "http://localhost:8000"

	// error bodies are only read for their detail text
	maxErrorBody = 64 * 1024
)

// Client talks to the document backend.
type Client struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	logger   logger.ILogger
}

// NewClient creates a backend client. A zero timeout disables the
// transport deadline.
func NewClient(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout < 0 {
		timeout = 0
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
		logger:   log,
	}
}

// errorResponse is the FastAPI-style error body.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// do sends req and decodes a 2xx JSON body into out, validating it.
func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug(moduleBackend, "Backend call", map[string]interface{}{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ports.StatusError{Code: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w: %v", ports.ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("validating response: %w: %v", ports.ErrMalformedResponse, err)
	}
	return nil
}

// readDetail extracts the "detail" field of an error body, if any.
func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err != nil || len(errResp.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(errResp.Detail, &text); err == nil {
		return text
	}
	// validation errors come back as a list of objects
	return string(errResp.Detail)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
