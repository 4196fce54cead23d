// Package llm optionally drafts initial request bodies for write methods
// from an endpoint's declared request schema, instead of starting the
// repair loop from an empty object.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"api-contract-validator/internal/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client drafts a JSON request body for one write operation.
type Client interface {
	SuggestPayload(ctx context.Context, method, path string, requestSchema map[string]interface{}) (map[string]interface{}, error)
}

// New returns a client for the configured provider.
func New(cfg config.LLMConfig, log *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

type openAIClient struct {
	cfg    config.LLMConfig
	client *openai.Client
	log    *zap.Logger
}

func newOpenAIClient(cfg config.LLMConfig, log *zap.Logger) *openAIClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &openAIClient{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
		log:    log,
	}
}

// SuggestPayload asks the model for a realistic JSON body matching the
// request schema. Failures are returned to the caller, which degrades to
// an empty body.
func (c *openAIClient) SuggestPayload(ctx context.Context, method, path string, requestSchema map[string]interface{}) (map[string]interface{}, error) {
	schemaJSON, err := json.Marshal(requestSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request schema: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a valid JSON request body for the endpoint %s %s.
Request body JSON Schema:
%s

Fill every required field with a realistic sample value. Respond with the
JSON object only, no explanation and no code fences.`, method, path, string(schemaJSON))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You generate API test payloads. Always respond with a single JSON object.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "`\n ")

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	c.log.Debug("payload drafted", zap.String("method", method), zap.String("path", path))
	return body, nil
}
