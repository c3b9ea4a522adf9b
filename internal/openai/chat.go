package openai

import (
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoCompletion is returned when the API returns no choices
	ErrNoCompletion = errors.New("no completion returned")
)

// ChatAPI defines the interface for single-turn chat completion
type ChatAPI interface {
	CreateCompletion(ctx context.Context, prompt string) (string, error)
}

// CreateCompletion sends prompt as a single user message.
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// zero is dropped by omitempty; the smallest positive value is greedy decoding
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// Complete returns the model's answer to prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if c.chat == nil {
		return "", ErrNoCompletion
	}

	answer, err := c.chat.CreateCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	return answer, nil
}
