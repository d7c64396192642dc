// Package gateway is the model gateway client: a thin OpenRouter-compatible
// chat-completions client with a single-call primitive and a parallel
// fan-out primitive. Failures are values, not errors: a call that times out,
// transports badly, or returns a non-2xx status yields a nil Result and the
// pipeline decides what that means.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the upstream chat-completions endpoint base.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Result is a successful single-model response.
type Result struct {
	Content        string `json:"content"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Turn is one prior conversation turn.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the upstream model gateway.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a gateway client. The API key is the process-wide
// credential; an empty key is allowed so local gateways work.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		// Per-call deadlines come from the request context; no client-wide
		// timeout on top.
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// QueryOne sends a single prompt to one model. Returns nil on transport
// error, non-2xx status, empty content, or timeout.
func (c *Client) QueryOne(ctx context.Context, model, prompt string, timeout time.Duration) *Result {
	return c.QueryOneWithMessages(ctx, model, []Turn{{Role: "user", Content: prompt}}, timeout)
}

// QueryOneWithMessages sends a prior-turns conversation to one model.
func (c *Client) QueryOneWithMessages(ctx context.Context, model string, turns []Turn, timeout time.Duration) *Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		c.logger.Debug("gateway marshal failed", "model", model, "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		c.logger.Debug("gateway request build failed", "model", model, "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Debug("gateway call failed", "model", model, "elapsed_ms", elapsed, "error", err)
		return nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debug("gateway read failed", "model", model, "error", err)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("gateway non-2xx", "model", model, "status", resp.StatusCode,
			"body", truncate(string(raw), 200))
		return nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Debug("gateway parse failed", "model", model, "error", err)
		return nil
	}
	if len(parsed.Choices) == 0 {
		return nil
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil
	}

	return &Result{Content: content, ResponseTimeMS: elapsed}
}

// QueryMany fans the same prompt out to several models in parallel. One
// call's failure never affects its siblings; failed models are simply
// missing (nil) in the returned map.
func (c *Client) QueryMany(ctx context.Context, models []string, prompt string, timeout time.Duration) map[string]*Result {
	return c.QueryManyWithMessages(ctx, models, []Turn{{Role: "user", Content: prompt}}, timeout)
}

// QueryManyWithMessages is QueryMany with a prior-turns conversation.
func (c *Client) QueryManyWithMessages(ctx context.Context, models []string, turns []Turn, timeout time.Duration) map[string]*Result {
	results := make(map[string]*Result, len(models))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, model := range models {
		model := model
		g.Go(func() error {
			res := c.QueryOneWithMessages(ctx, model, turns, timeout)
			mu.Lock()
			results[model] = res
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are nil entries.
	_ = g.Wait()
	return results
}

// QueryEach sends a distinct prompt to each model in parallel. prompts is
// keyed by model id.
func (c *Client) QueryEach(ctx context.Context, prompts map[string]string, timeout time.Duration) map[string]*Result {
	results := make(map[string]*Result, len(prompts))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for model, prompt := range prompts {
		model, prompt := model, prompt
		g.Go(func() error {
			res := c.QueryOne(ctx, model, prompt, timeout)
			mu.Lock()
			results[model] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// String implements fmt.Stringer for debug logging without dumping bodies.
func (r *Result) String() string {
	if r == nil {
		return "<failed>"
	}
	return fmt.Sprintf("Result(%d chars, %dms)", len(r.Content), r.ResponseTimeMS)
}
