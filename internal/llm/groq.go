package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message used by the intake and analysis
// services. Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client defines the oracle surface the rest of the system depends on.
// Chat drives the intake dialogue with the full prompt assembled by the
// caller; Complete is a single system+user exchange used for report
// analysis and structured extraction.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Complete(ctx context.Context, system, user string) (string, error)
}

// GroqClient talks to Groq's OpenAI-compatible completion API. Model
// and credentials are supplied by the caller from configuration.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient constructs a Groq-backed client. baseURL points at the
// OpenAI-compatible endpoint; when empty the library default (OpenAI
// itself) is used, which is handy for local testing against a stub.
func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Chat sends the message history and returns the assistant's reply.
func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("llm client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Complete runs a single system+user exchange at low temperature, for
// deterministic analysis and extraction prompts.
func (c *GroqClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.client == nil {
		return "", errors.New("llm client not initialized")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
