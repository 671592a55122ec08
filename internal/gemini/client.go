// Package gemini is a minimal client for the Gemini generateContent REST API,
// used to answer a question about a single document's text.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docqa/internal/config"
)

// apiKeyHeader carries the key instead of the query string so it never shows up in URLs.
const apiKeyHeader = "x-goog-api-key"

// Answerer answers a question about a document's text.
type Answerer interface {
	Answer(ctx context.Context, documentText, question string) (string, error)
}

// Client calls generateContent once per question. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	log        logrus.FieldLogger
}

var _ Answerer = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for diagnostic traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client from explicit configuration.
// The default transport adds client spans but no timeout.
func NewClient(cfg config.GeminiConfig, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gemini: invalid base url %q", cfg.BaseURL)
	}

	c := &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimRight(base.String(), "/"), url.PathEscape(cfg.Model)),
		apiKey: cfg.APIKey,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BuildPrompt joins the full document text and the question. Nothing is truncated.
func BuildPrompt(documentText, question string) string {
	return documentText + "\n\nQuestion: " + question
}

// Answer sends the prompt and returns the first candidate's text verbatim.
func (c *Client) Answer(ctx context.Context, documentText, question string) (string, error) {
	prompt := BuildPrompt(documentText, question)
	body, err := json.Marshal(GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	c.log.WithField("prompt_chars", len(prompt)).Debug("sending generateContent request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.WithFields(logrus.Fields{
		"status":         resp.StatusCode,
		"response_bytes": len(raw),
	}).Debug("generateContent responded")

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Details: decodeDetails(raw)}
	}

	var out GenerateContentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ParseError{Reason: "decode body", Err: err}
	}
	return out.FirstText()
}

// decodeDetails returns the parsed JSON error body, or the trimmed text when it is not JSON.
func decodeDetails(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return strings.TrimSpace(string(raw))
}
