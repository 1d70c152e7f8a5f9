// Package llm is the completion-API adapter: a chat-completions HTTP client
// with bounded rate-limit retries, an ordered model fallback list, and
// tolerant extraction of JSON payloads embedded in prose.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxResponseSize caps the completion body read to keep a misbehaving
// endpoint from exhausting memory.
const maxResponseSize = 10 * 1024 * 1024

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion call. Models come from the client's configured
// fallback list, not the request.
type Request struct {
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// Response is the completion result.
type Response struct {
	Content string
	Model   string
}

// Config holds the endpoint settings for the completion client.
type Config struct {
	BaseURL string
	APIKey  string

	// Models is the ordered fallback list. The first entry is the preferred
	// model; later entries are tried when the endpoint reports the model as
	// unavailable.
	Models []string

	// MaxAttempts bounds retries per model for transient failures.
	MaxAttempts int

	// RetryAfterCap bounds how long a server-specified rate-limit wait is
	// honored before the attempt is abandoned as transient.
	RetryAfterCap time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.RetryAfterCap <= 0 {
		c.RetryAfterCap = 30 * time.Second
	}
	return c
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("llm: at least one model is required")
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{cfg: cfg.withDefaults(), httpClient: httpClient}, nil
}

// Complete runs the request against the fallback list in order. Per model,
// transient failures (rate limits, 5xx, network) retry up to MaxAttempts;
// a model-unavailable signal moves straight to the next model; fatal errors
// (auth, bad request) abort immediately. Exhausting the whole list surfaces
// as a transport error.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, NewFatalError(fmt.Errorf("llm: at least one message is required"))
	}

	var lastErr error

	for _, model := range c.cfg.Models {
		resp, err := c.tryModel(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if isModelUnavailable(err) {
			log.Printf("llm: model %s unavailable, trying next fallback", model)
			continue
		}
		if IsFatal(err) {
			return nil, err
		}

		log.Printf("llm: model %s failed (%v), trying next fallback", model, err)
	}

	return nil, NewTransientError(fmt.Errorf("llm: all models exhausted: %w", lastErr))
}

func (c *Client) tryModel(ctx context.Context, model string, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		resp, wait, err := c.doRequest(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if IsFatal(err) || isModelUnavailable(err) {
			return nil, err
		}

		if attempt == c.cfg.MaxAttempts {
			break
		}

		// Rate-limited responses carry the wait the server asked for;
		// other transient failures back off linearly.
		if wait <= 0 {
			wait = time.Duration(attempt) * 2 * time.Second
		}
		if wait > c.cfg.RetryAfterCap {
			return nil, NewTransientError(fmt.Errorf("llm: rate-limit wait %s exceeds cap: %w", wait, err))
		}

		select {
		case <-ctx.Done():
			return nil, NewTransientError(ctx.Err())
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// doRequest performs one HTTP call. The returned duration is the
// server-specified wait on a rate-limit response, zero otherwise.
func (c *Client) doRequest(ctx context.Context, model string, req Request) (*Response, time.Duration, error) {
	body, err := json.Marshal(completionRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, 0, NewFatalError(fmt.Errorf("llm: marshal request: %w", err))
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, NewFatalError(fmt.Errorf("llm: create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, NewTransientError(fmt.Errorf("llm: request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, NewTransientError(fmt.Errorf("llm: read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, retryAfter(httpResp), classifyHTTPError(model, httpResp.StatusCode, respBody)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, 0, fmt.Errorf("%w: response contains no choices", ErrMalformedPayload)
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}

	return &Response{Content: parsed.Choices[0].Message.Content, Model: respModel}, 0, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}

func classifyHTTPError(model string, statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("llm: API error for model %s (status %d): %s", model, statusCode, bodyStr)

	switch {
	case statusCode == http.StatusNotFound,
		statusCode == http.StatusBadRequest && strings.Contains(bodyStr, "model_not_found"):
		return &modelUnavailableError{model: model, err: err}
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return NewFatalError(err)
	case statusCode == http.StatusBadRequest:
		return NewFatalError(err)
	default:
		return NewFatalError(err)
	}
}
