package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

// MonthlyStats covers ledger entries from the first of the current
// calendar month (server-local) onward.
type MonthlyStats struct {
	TotalCost         float64 `json:"total_cost"`
	PremiumModelCalls int     `json:"premium_model_calls"`
	TotalCalls        int     `json:"total_calls"`
	TTSUnits          int     `json:"tts_units"`
}

// DailyStats covers ledger entries from local midnight onward. Every
// entry counts as one conversation turn regardless of model.
type DailyStats struct {
	ConversationTurns int     `json:"conversation_turns"`
	DailyCost         float64 `json:"daily_cost"`
}

// Aggregator recomputes rolling stats from the ledger on every call.
// A single user's monthly volume is bounded by the limits themselves,
// so a full-window scan is fine and there is nothing to invalidate.
type Aggregator struct {
	store ledger.Store
}

func NewAggregator(store ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Report aggregates the user's ledger into monthly and daily stats as of now.
func (a *Aggregator) Report(ctx context.Context, userID string, now time.Time) (MonthlyStats, DailyStats, error) {
	monthStart := MonthStart(now)
	dayStart := DayStart(now)

	entries, err := a.store.EntriesSince(ctx, userID, monthStart)
	if err != nil {
		return MonthlyStats{}, DailyStats{}, fmt.Errorf("failed to read ledger: %w", err)
	}

	var monthly MonthlyStats
	var daily DailyStats
	for _, e := range entries {
		monthly.TotalCost += e.EstimatedCost
		monthly.TotalCalls++
		switch e.Model {
		case ledger.ModelPremiumChat:
			monthly.PremiumModelCalls++
		case ledger.ModelSpeech:
			monthly.TTSUnits += e.InputTokens
		}

		if !e.CreatedAt.Before(dayStart) {
			daily.ConversationTurns++
			daily.DailyCost += e.EstimatedCost
		}
	}

	return monthly, daily, nil
}

// MonthStart returns the first day of now's month at 00:00:00 in now's location.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// DayStart returns now's calendar day at 00:00:00 in now's location.
func DayStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
