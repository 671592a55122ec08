package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: srv.URL,
	}, WithHTTPClient(srv.Client()), WithLogger(logging.Discard()))
	require.NoError(t, err)
	return c
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "doc text\n\nQuestion: why?", BuildPrompt("doc text", "why?"))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.GeminiConfig{Model: "m", BaseURL: "https://x"})
	assert.ErrorContains(t, err, "api key")

	_, err = NewClient(config.GeminiConfig{APIKey: "k", BaseURL: "https://x"})
	assert.ErrorContains(t, err, "model")

	_, err = NewClient(config.GeminiConfig{APIKey: "k", Model: "m", BaseURL: "not a url"})
	assert.ErrorContains(t, err, "base url")
}

func TestClient_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first candidate text verbatim", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get(apiKeyHeader))
			assert.Empty(t, r.URL.Query().Get("key"))

			var req GenerateContentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			require.Len(t, req.Contents[0].Parts, 1)
			assert.Equal(t, "page text\n\nQuestion: what is it?", req.Contents[0].Parts[0].Text)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[
				{"content":{"role":"model","parts":[{"text":"  It is a report.\n"},{"text":"ignored"}]},"finishReason":"STOP"},
				{"content":{"parts":[{"text":"second"}]}}
			]}`))
		})

		answer, err := c.Answer(ctx, "page text", "what is it?")

		require.NoError(t, err)
		assert.Equal(t, "  It is a report.\n", answer)
	})

	t.Run("non-200 surfaces provider body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
		})

		_, err := c.Answer(ctx, "text", "q")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
		assert.Equal(t, map[string]any{
			"error": map[string]any{
				"code":    float64(400),
				"message": "API key not valid",
				"status":  "INVALID_ARGUMENT",
			},
		}, upErr.Details)
	})

	t.Run("non-JSON error body kept as text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		})

		_, err := c.Answer(ctx, "text", "q")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "bad gateway", upErr.Details)
	})

	t.Run("safety filtered response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY","index":0}]}`))
		})

		_, err := c.Answer(ctx, "text", "q")

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "SAFETY")
	})

	t.Run("no candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"OTHER"}}`))
		})

		_, err := c.Answer(ctx, "text", "q")

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "blocked")
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := c.Answer(ctx, "text", "q")

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		c, err := NewClient(config.GeminiConfig{APIKey: "k", Model: "m", BaseURL: base}, WithLogger(logging.Discard()))
		require.NoError(t, err)

		_, err = c.Answer(ctx, "text", "q")

		var trErr *TransportError
		require.ErrorAs(t, err, &trErr)
		assert.NotNil(t, errors.Unwrap(trErr))
	})
}

func TestGenerateContentResponse_FirstText(t *testing.T) {
	tests := []struct {
		name    string
		resp    GenerateContentResponse
		want    string
		wantErr bool
	}{
		{
			name: "text",
			resp: GenerateContentResponse{Candidates: []Candidate{{Content: &Content{Parts: []Part{{Text: "a"}}}}}},
			want: "a",
		},
		{name: "empty", resp: GenerateContentResponse{}, wantErr: true},
		{
			name:    "no parts",
			resp:    GenerateContentResponse{Candidates: []Candidate{{Content: &Content{}}}},
			wantErr: true,
		},
		{
			name:    "empty text",
			resp:    GenerateContentResponse{Candidates: []Candidate{{Content: &Content{Parts: []Part{{}}}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resp.FirstText()
			if tt.wantErr {
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
