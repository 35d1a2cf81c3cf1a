package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LLMClient issues one structured request and returns the raw JSON payload.
// Implementations classify failures: transient conditions wrap ErrOverloaded
// or ErrRateLimited, shape violations wrap ErrMalformed. The client itself
// never retries; that is the retry decorator's job.
type LLMClient interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema map[string]any) ([]byte, error)
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultGeminiConfig returns sensible defaults. gemini-3-pro-preview is used
// for the deconstruction and creative-writing phases.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-3-pro-preview",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// GeminiClient implements LLMClient against the generateContent REST API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	log             *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewGeminiClient creates a client from config. A nil logger is replaced
// with a no-op logger.
func NewGeminiClient(config GeminiConfig, log *zap.Logger) *GeminiClient {
	if log == nil {
		log = zap.NewNop()
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-3-pro-preview"
	}
	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         config.BaseURL,
		model:           model,
		maxOutputTokens: config.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: config.Timeout},
		log:             log,
	}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// GenerateJSON sends one structured request and returns the response text,
// which the schema constrains to a JSON document.
func (c *GeminiClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema map[string]any) ([]byte, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	// Client-side request spacing.
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:      1.0,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: systemPrompt}}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		c.log.Warn("generation request rejected",
			zap.String("model", c.model),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil, err
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no completion returned", ErrMalformed)
	}

	var result strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	payload := strings.TrimSpace(result.String())

	c.log.Debug("generation request completed",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(startTime)),
		zap.Int("response_len", len(payload)),
		zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount))

	return []byte(payload), nil
}

// classifyStatus maps HTTP failures onto the transient error taxonomy so the
// retry decorator can tell overload from permanent rejection.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w (429): %s", ErrRateLimited, strings.TrimSpace(string(body)))
	case status == http.StatusServiceUnavailable,
		strings.Contains(strings.ToLower(string(body)), "overloaded"):
		return fmt.Errorf("%w (%d): %s", ErrOverloaded, status, strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("API request failed with status %d: %s", status, strings.TrimSpace(string(body)))
	}
}
