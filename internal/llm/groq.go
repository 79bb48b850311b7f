package llm

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"
)

const defaultMaxTokens = 1024

type GroqClient struct {
	client    *groq.Client
	model     groq.ChatModel
	maxTokens int
}

func NewGroqClient(apiKey, model string) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client:    client,
		model:     groq.ChatModel(model),
		maxTokens: defaultMaxTokens,
	}, nil
}

func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, nil)
}

func (c *GroqClient) ChatJSON(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, &groq.ChatResponseFormat{Type: "json_object"})
}

func (c *GroqClient) complete(ctx context.Context, messages []Message, format *groq.ChatResponseFormat) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model:          c.model,
		Messages:       convertMessages(messages),
		MaxTokens:      c.maxTokens,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}

func convertMessages(messages []Message) []groq.ChatCompletionMessage {
	converted := make([]groq.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		converted[i] = groq.ChatCompletionMessage{
			Role:    groqRole(m.Role),
			Content: m.Content,
		}
	}
	return converted
}

func groqRole(role string) groq.Role {
	switch role {
	case RoleUser:
		return groq.RoleUser
	case RoleAssistant:
		return groq.RoleAssistant
	default:
		return groq.RoleSystem
	}
}
