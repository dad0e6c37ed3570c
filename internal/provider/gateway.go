package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// Gateway fronts the upstream AI providers with per-upstream circuit
// breakers. Upstream errors propagate unchanged; there are no retries.
type Gateway struct {
	chat     ChatProvider
	speech   SpeechProvider
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewGateway(chat ChatProvider, speech SpeechProvider) *Gateway {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range []string{chat.Name(), speech.Name()} {
		settings := gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    5 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}
		breakers[name] = gobreaker.NewCircuitBreaker(settings)
	}
	return &Gateway{
		chat:     chat,
		speech:   speech,
		breakers: breakers,
	}
}

func (g *Gateway) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	cb := g.breakers[g.chat.Name()]
	result, err := cb.Execute(func() (interface{}, error) {
		return g.chat.Complete(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ChatResponse), nil
}

func (g *Gateway) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	cb := g.breakers[g.speech.Name()]
	result, err := cb.Execute(func() (interface{}, error) {
		return g.speech.Synthesize(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*SpeechResponse), nil
}
