package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/pkg/anthropic"
	"github.com/poolfinder/pool-cli/pkg/openai"
)

// AnthropicCompleter adapts the Anthropic client to Completer.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter wraps c. An empty model selects anthropic.DefaultModel.
func NewAnthropicCompleter(c anthropic.Client, model string) *AnthropicCompleter {
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &AnthropicCompleter{client: c, model: model}
}

// Complete implements Completer.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	temp := Temperature
	resp, err := a.client.Complete(ctx, anthropic.Request{
		Model:       a.model,
		MaxTokens:   MaxTokens,
		System:      system,
		CacheSystem: true,
		Prompt:      user,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.Log(a.model)
	if resp.StopReason == anthropic.StopMaxTokens {
		return "", eris.Errorf("extract: reply truncated at %d tokens", MaxTokens)
	}
	return resp.Text, nil
}

// OpenAICompleter adapts the OpenAI client to Completer.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter wraps c. An empty model selects openai.DefaultModel.
func NewOpenAICompleter(c openai.Client, model string) *OpenAICompleter {
	if model == "" {
		model = openai.DefaultModel
	}
	return &OpenAICompleter{client: c, model: model}
}

// Complete implements Completer.
func (o *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.Chat(ctx, openai.ChatRequest{
		Model:       o.model,
		System:      system,
		User:        user,
		MaxTokens:   MaxTokens,
		Temperature: float32(Temperature),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
