package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/quiz/internal/llm/prompts"
	"github.com/pavelanni/quiz/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client. An unknown variant is an error.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid explain variant %q", variant)
	}
	if err := prompts.Load(); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.Variant(variant),
	}, nil
}

// Ping checks that the endpoint answers by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Explain asks the model why the correct choice of q is right, given the
// player's selected choice.
func (c *Client) Explain(ctx context.Context, q model.Question, selected int) (string, error) {
	prompt, err := prompts.BuildExplainPrompt(c.variant, q, selected)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM explanation", "question", q.Number, "tokens", resp.Usage.TotalTokens)
	if text == "" {
		return "", fmt.Errorf("LLM returned an empty explanation")
	}
	return text, nil
}
