package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultURL   = "https://api.x.ai/v1/chat/completions"
	DefaultModel = "grok-2-1212"

	defaultTimeout = 10 * time.Second
	maxTokens      = 150
	temperature    = 0.7
	maxErrorBody   = 4 << 10
)

var errNoContent = errors.New("response has no message content")

// Client sends single-shot prompts to a chat completion endpoint.
type Client struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for the endpoint at url. Empty url or model
// select DefaultURL and DefaultModel.
func NewClient(apiKey, url, model string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey: apiKey,
		url:    url,
		model:  model,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log.Logger.With().Str("component", "completion").Logger(),
	}
}

// Complete sends prompt as a single user message and returns the generated
// text with surrounding whitespace trimmed. The second return value is false
// when no text could be obtained; the cause is logged, never returned.
func (c *Client) Complete(ctx context.Context, prompt string) (string, bool) {
	start := time.Now()
	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("completion failed")
		return "", false
	}
	c.logger.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("completion succeeded")
	return text, true
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", errNoContent
	}

	text := strings.TrimSpace(*out.Choices[0].Message.Content)
	if text == "" {
		return "", errNoContent
	}
	return text, nil
}
