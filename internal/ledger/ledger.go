package ledger

import (
	"context"
	"time"
)

// Model tier tags recorded on every ledger entry. The tag is what the
// aggregator matches on, so call sites must use these constants rather
// than whatever model string the upstream reports back.
const (
	ModelPremiumChat   = "gpt-4o"
	ModelEfficientChat = "gpt-4o-mini"
	ModelSpeech        = "tts-1"
)

// Per-1M-token pricing for chat tiers and per-1M-character pricing for
// speech synthesis, in USD.
var chatPricing = map[string]struct{ input, output float64 }{
	ModelPremiumChat:   {input: 2.50, output: 10.00},
	ModelEfficientChat: {input: 0.15, output: 0.60},
}

const speechPricePer1MChars = 15.00

// EstimateChatCost returns the estimated USD cost of a chat completion.
// Unknown models are priced at the premium tier so the ledger never
// undercounts.
func EstimateChatCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := chatPricing[model]
	if !ok {
		p = chatPricing[ModelPremiumChat]
	}
	return float64(inputTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
}

// EstimateSpeechCost returns the estimated USD cost of synthesizing the
// given number of characters.
func EstimateSpeechCost(characters int) float64 {
	return float64(characters) / 1e6 * speechPricePer1MChars
}

// Entry is one record per billable AI invocation. Entries are append-only:
// nothing in this service ever updates or deletes one.
//
// For speech synthesis, InputTokens holds the number of characters
// synthesized; the monthly TTS quota is accounted in characters.
type Entry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	RequestID     string    `json:"request_id"`
	Model         string    `json:"model"`
	EstimatedCost float64   `json:"estimated_cost"`
	InputTokens   int       `json:"input_tokens"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserCost is a per-user cost rollup used by the alert monitor.
type UserCost struct {
	UserID    string
	TotalCost float64
}

type Store interface {
	Append(ctx context.Context, entry *Entry) error
	EntriesSince(ctx context.Context, userID string, since time.Time) ([]Entry, error)
	UsersOverCost(ctx context.Context, since time.Time, threshold float64) ([]UserCost, error)
}
