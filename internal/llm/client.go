// Package llm wraps the chat-completion provider behind a single Complete
// call. Providers are OpenAI-compatible (OpenRouter, Ollama or any endpoint
// speaking the same API).
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Apology is returned to users when generation fails; chat endpoints always
// answer with text rather than an error.
const Apology = "Sorry, I encountered an error while generating the response."

// Config selects and configures the provider.
type Config struct {
	Provider      string // "openrouter", "ollama" or "openai"
	Model         string
	APIKey        string
	OllamaBaseURL string
}

// Client issues chat completions.
type Client struct {
	api   *openai.Client
	model string
}

// New builds a client for the configured provider.
func New(cfg Config) (*Client, error) {
	var clientCfg openai.ClientConfig
	switch cfg.Provider {
	case "ollama":
		// Key is required by the SDK but ignored by Ollama.
		clientCfg = openai.DefaultConfig("ollama")
		clientCfg.BaseURL = strings.TrimRight(cfg.OllamaBaseURL, "/") + "/v1"
	case "openrouter":
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = "https://openrouter.ai/api/v1"
	case "openai":
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
	return &Client{api: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

// Complete sends one system+user exchange and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
