// Package openai implements the chat and speech providers on top of the
// OpenAI API.
package openai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/provider"
)

type ChatClient struct {
	client *openai.Client
}

func NewChat(apiKey string) provider.ChatProvider {
	return &ChatClient{client: openai.NewClient(apiKey)}
}

func (c *ChatClient) Complete(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat returned no choices")
	}

	return &provider.ChatResponse{
		ID:           resp.ID,
		Content:      resp.Choices[0].Message.Content,
		Model:        req.Model,
		Provider:     c.Name(),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *ChatClient) Name() string {
	return "openai-chat"
}

type SpeechClient struct {
	client *openai.Client
}

func NewSpeech(apiKey string) provider.SpeechProvider {
	return &SpeechClient{client: openai.NewClient(apiKey)}
}

func (c *SpeechClient) Synthesize(ctx context.Context, req *provider.SpeechRequest) (*provider.SpeechResponse, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(req.Model),
		Input: req.Text,
		Voice: openai.SpeechVoice(req.Voice),
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech error: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read openai speech response: %w", err)
	}

	return &provider.SpeechResponse{
		Audio:      audio,
		Model:      req.Model,
		Provider:   c.Name(),
		Characters: len(req.Text),
	}, nil
}

func (c *SpeechClient) Name() string {
	return "openai-speech"
}
