// Package llm is the text-generation collaborator: a thin Gemini
// generateContent client with rate-limit aware retry. The engine only sees
// the Generator interface, so tests script responses without HTTP.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	httpTimeout     = 60 * time.Second

	maxRetries     = 3
	baseRetryDelay = 2 * time.Second
	requestsPerMin = 15
)

// Client calls the Gemini generateContent API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// New builds a Client for the given model. apiKey must be non-empty.
func New(apiKey, model string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: httpTimeout},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/requestsPerMin), 1),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt and returns the generated text with any markdown
// code fence stripped. Rate-limit errors (429 / "Too Many Requests") are
// retried with the delay the API suggests, or exponential backoff when it
// doesn't; other errors propagate immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return StripCodeFence(text), nil
		}
		if !IsRateLimit(err) {
			return "", err
		}

		lastErr = err
		delay := RetryDelay(err.Error(), attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("rate limited after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("json unmarshal: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// IsRateLimit reports whether err looks like a rate-limit rejection.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

var retryDelayRe = regexp.MustCompile(`(?i)retry(?:Delay|[- ]after)?["':\s]*(\d+(?:\.\d+)?)\s*s`)

// RetryDelay extracts a suggested delay from an error message, falling back
// to exponential backoff (base × 2^attempt) when none is advertised.
func RetryDelay(errText string, attempt int) time.Duration {
	if m := retryDelayRe.FindStringSubmatch(errText); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return baseRetryDelay * (1 << attempt)
}

// StripCodeFence removes a surrounding markdown code fence, if present, so
// fenced JSON parses directly.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.Index(trimmed, "\n"); i >= 0 {
		// Drop the language tag line ("json", "JSON", …).
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
