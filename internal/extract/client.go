// Package extract turns raw contract text into structured rate data by way
// of a chat-completions model. The client speaks the OpenAI-compatible API
// in JSON mode; normalization then converts whatever the model produced into
// a fully-defaulted Contract the rest of the pipeline can trust.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aahaas/go-contract-backend/internal/sysutil"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient constructs a Client. Empty model or baseURL fall back to the
// defaults; the http.Client carries a generous timeout because contract
// extraction regularly takes tens of seconds on large documents.
func NewClient(apiKey, model, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      sysutil.FirstNonEmpty(model, defaultModel),
		baseURL:    strings.TrimRight(sysutil.FirstNonEmpty(baseURL, defaultBaseURL), "/"),
		backoff:    retryBackoff,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ExtractContract sends the contract text through the extraction prompt and
// returns the model's JSON payload with any markdown fencing stripped. The
// returned bytes are not guaranteed to be valid JSON; Normalize owns that.
func (c *Client) ExtractContract(ctx context.Context, contractText string) ([]byte, error) {
	content, err := c.complete(ctx, extractionSystemPrompt, extractionUserPrompt(contractText))
	if err != nil {
		return nil, err
	}
	return []byte(StripFences(content)), nil
}

// complete performs one chat completion in JSON mode, retrying transient
// failures (429 and 5xx) with a flat backoff.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.1,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			}
		}

		content, retryable, err := c.doOnce(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("chat completion failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, body []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("chat completion returned %d: %s", resp.StatusCode, truncate(payload, 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", false, fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("chat completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}

// StripFences removes markdown code fencing the model sometimes wraps around
// its JSON despite JSON mode, and trims everything outside the outermost
// braces.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
