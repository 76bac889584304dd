package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/config"
)

// openAIClient talks to any OpenAI-compatible chat endpoint. With a base URL
// pointing at Ollama's /v1 it doubles as the local-model backend.
type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg config.Config) (*openAIClient, error) {
	if cfg.LLMModel == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.OpenAIAPIKey))
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	client := openai.NewClient(opts...)
	return &openAIClient{client: &client, model: cfg.LLMModel}, nil
}

func (c *openAIClient) Name() string { return "openai" }

func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Error("failed to call chat completion API", "provider", c.Name(), "error", err.Error())
		return "", wrapErr(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", apperr.Generation(apperr.GenerationInvalidResponse, fmt.Errorf("no choices returned"))
	}
	return checkText(resp.Choices[0].Message.Content)
}
