package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultGeminiConfig("test-key")
	cfg.BaseURL = server.URL
	return NewGeminiClient(cfg, nil)
}

func geminiTextResponse(text string) []byte {
	body := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
					"role":  "model",
				},
			},
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func TestGenerateJSONStructuredRequest(t *testing.T) {
	var captured GeminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(geminiTextResponse(`{"judgmentLock":"x"}`))
	})

	payload, err := client.GenerateJSON(context.Background(), "system text", "user text", judgmentSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"judgmentLock":"x"}`, string(payload))

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system text", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "user text", captured.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	assert.NotNil(t, captured.GenerationConfig.ResponseSchema)
}

func TestGenerateJSONConcatenatesParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}],"role":"model"}}]}`))
	})

	payload, err := client.GenerateJSON(context.Background(), "", "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(payload))
}

func TestGenerateJSONClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"overloaded 503", http.StatusServiceUnavailable, "service busy", ErrOverloaded},
		{"overloaded by message", http.StatusInternalServerError, "the model is overloaded", ErrOverloaded},
		{"rate limited 429", http.StatusTooManyRequests, "quota", ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.GenerateJSON(context.Background(), "", "prompt", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, IsTransient(err))
		})
	}
}

func TestGenerateJSONPermanentFailureNotTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid argument"))
	})
	_, err := client.GenerateJSON(context.Background(), "", "prompt", nil)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestGenerateJSONEmptyCandidatesIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := client.GenerateJSON(context.Background(), "", "prompt", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestGenerateJSONRequiresAPIKey(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{BaseURL: "http://unused", Model: "m"}, nil)
	_, err := client.GenerateJSON(context.Background(), "", "prompt", nil)
	require.Error(t, err)
}
