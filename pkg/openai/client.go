// Package openai wraps the OpenAI chat completion API for fact extraction.
package openai

import (
	"context"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Client defines the OpenAI operations used by the extractor.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a single system+user completion request.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// ChatResponse holds the first choice and token usage.
type ChatResponse struct {
	ID           string
	Content      string
	FinishReason string
	TotalTokens  int
}

// Option configures the client.
type Option func(*sdk.ClientConfig)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *sdk.ClientConfig) {
		c.BaseURL = url
	}
}

type sdkClient struct {
	client *sdk.Client
}

// NewClient creates an OpenAI client backed by go-openai.
func NewClient(apiKey string, opts ...Option) Client {
	cfg := sdk.DefaultConfig(apiKey)
	for _, o := range opts {
		o(&cfg)
	}
	return &sdkClient{client: sdk.NewClientWithConfig(cfg)}
}

func (c *sdkClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	creq := sdk.ChatCompletionRequest{
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleSystem, Content: req.System},
			{Role: sdk.ChatMessageRoleUser, Content: req.User},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: no choices in response")
	}

	return &ChatResponse{
		ID:           resp.ID,
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}
