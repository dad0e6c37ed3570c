package provider

import (
	"context"
)

type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

type ChatResponse struct {
	ID           string
	Content      string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

type SpeechRequest struct {
	Model string
	Voice string
	Text  string
}

type SpeechResponse struct {
	Audio      []byte
	Model      string
	Provider   string
	Characters int
}

type ChatProvider interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Name() string
}

type SpeechProvider interface {
	Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error)
	Name() string
}
