package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/goal-planner/internal/models"
	"github.com/wuwenbin0122/goal-planner/internal/planner"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel    = "openai/gpt-3.5-turbo"
	DefaultTimeout  = 30 * time.Second

	maxErrorBodyLength = 1024
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Referer  string
	Title    string
	Timeout  time.Duration
}

// Message mirrors the OpenAI-compatible chat message payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to the OpenRouter chat-completions endpoint. Calls are
// synchronous and never retried.
type Client struct {
	cfg    Config
	client httpDoer
	now    func() time.Time
	logger *zap.SugaredLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer httpDoer) Option {
	return func(c *Client) { c.client = doer }
}

// WithClock overrides the time source used in system prompts.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, logger *zap.SugaredLogger, opts ...Option) *Client {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateStrategy sends prompt with the fixed strategy system message and
// returns the first choice's text.
func (c *Client) GenerateStrategy(ctx context.Context, prompt string) (string, error) {
	messages := []Message{
		{Role: string(models.RoleSystem), Content: planner.StrategySystemPrompt},
		{Role: string(models.RoleUser), Content: prompt},
	}
	return c.complete(ctx, "strategy", messages)
}

// ContinueConversation prepends a single system message to history and
// returns the assistant's reply.
func (c *Client) ContinueConversation(ctx context.Context, history []models.Turn, sc planner.StrategyContext) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: string(models.RoleSystem), Content: planner.BuildChatSystemPrompt(sc, c.now())})
	for _, turn := range history {
		messages = append(messages, Message{Role: string(turn.Role), Content: turn.Content})
	}
	return c.complete(ctx, "chat", messages)
}

func (c *Client) complete(ctx context.Context, task string, messages []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	start := time.Now()
	reply, err := c.do(ctx, messages)
	latency := time.Since(start)

	if err != nil {
		c.logger.Warnw("llm call failed",
			"task", task,
			"model", c.cfg.Model,
			"latency_ms", latency.Milliseconds(),
			"kind", KindOf(err),
			"error", err,
		)
		return "", err
	}

	c.logger.Infow("llm call completed",
		"task", task,
		"model", c.cfg.Model,
		"latency_ms", latency.Milliseconds(),
		"messages", len(messages),
	)
	return reply, nil
}

func (c *Client) do(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("llm: marshal chat payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: create chat request: %w", err)
	}

	request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	request.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		request.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		request.Header.Set("X-Title", c.cfg.Title)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read chat response: %w", err)}
	}

	if response.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", &UpstreamError{StatusCode: response.StatusCode, Body: snippet(respBody, response.StatusCode)}
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", &UpstreamError{StatusCode: response.StatusCode, Body: snippet(respBody, response.StatusCode)}
	}
	if len(decoded.Choices) == 0 {
		return "", &UpstreamError{StatusCode: response.StatusCode, Body: "response contained no choices"}
	}

	return decoded.Choices[0].Message.Content, nil
}

func snippet(body []byte, statusCode int) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(statusCode)
	}
	if len(text) > maxErrorBodyLength {
		text = text[:maxErrorBodyLength]
	}
	return text
}
