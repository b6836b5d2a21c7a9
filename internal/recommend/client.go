package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Skufu/saviour/internal/patient"
)

const DefaultTimeout = 30 * time.Second

// Config points the client at an OpenAI-compatible chat completion endpoint.
type Config struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration
}

// ChatCompleter is the subset of *openai.Client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api     ChatCompleter
	model   string
	timeout time.Duration
}

// New validates cfg and builds a client. A missing token, endpoint or model
// yields a *ConfigurationError; an empty credential is never sent.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, &ConfigurationError{Setting: "API token", Reason: "is not set"}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, &ConfigurationError{Setting: "endpoint base URL", Reason: "is not set"}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigurationError{Setting: "model", Reason: "is not set"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return NewWithAPI(openai.NewClientWithConfig(clientCfg), cfg.Model, timeout), nil
}

// NewWithAPI wraps an existing completer, mainly for tests.
func NewWithAPI(api ChatCompleter, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{api: api, model: model, timeout: timeout}
}

// Recommend sends one completion request for in and returns the first
// choice's content as received. It does not retry.
func (c *Client) Recommend(ctx context.Context, in patient.Input) (string, error) {
	prompt, err := BuildPrompt(in)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &TransportError{StatusCode: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &TransportError{Err: errors.New("completion returned no choices")}
	}

	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Unavailable always fails with err. The server uses it when configuration
// is incomplete so the rest of the form keeps working.
type Unavailable struct {
	Err error
}

func (u Unavailable) Recommend(context.Context, patient.Input) (string, error) {
	return "", u.Err
}
