package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

type mockLedgerStore struct {
	entriesFunc func(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error)
}

func (m *mockLedgerStore) Append(ctx context.Context, entry *ledger.Entry) error { return nil }

func (m *mockLedgerStore) EntriesSince(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error) {
	if m.entriesFunc != nil {
		return m.entriesFunc(ctx, userID, since)
	}
	return nil, nil
}

func (m *mockLedgerStore) UsersOverCost(ctx context.Context, since time.Time, threshold float64) ([]ledger.UserCost, error) {
	return nil, nil
}

func TestReport_Aggregation(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	store := &mockLedgerStore{
		entriesFunc: func(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error) {
			if userID != "user-1" {
				t.Errorf("Expected user-1, got %s", userID)
			}
			want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			if !since.Equal(want) {
				t.Errorf("Expected month start %v, got %v", want, since)
			}
			return []ledger.Entry{
				{Model: ledger.ModelPremiumChat, EstimatedCost: 0.05, InputTokens: 800, CreatedAt: yesterday},
				{Model: ledger.ModelEfficientChat, EstimatedCost: 0.01, InputTokens: 500, CreatedAt: now},
				{Model: ledger.ModelSpeech, EstimatedCost: 0.02, InputTokens: 1500, CreatedAt: now},
			}, nil
		},
	}

	monthly, daily, err := NewAggregator(store).Report(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if monthly.TotalCalls != 3 {
		t.Errorf("Expected 3 total calls, got %d", monthly.TotalCalls)
	}
	if monthly.PremiumModelCalls != 1 {
		t.Errorf("Expected 1 premium call, got %d", monthly.PremiumModelCalls)
	}
	if monthly.TTSUnits != 1500 {
		t.Errorf("Expected 1500 TTS units, got %d", monthly.TTSUnits)
	}
	if got, want := monthly.TotalCost, 0.08; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Expected total cost %.2f, got %.4f", want, got)
	}

	// Yesterday's premium call is monthly-only.
	if daily.ConversationTurns != 2 {
		t.Errorf("Expected 2 daily turns, got %d", daily.ConversationTurns)
	}
	if got, want := daily.DailyCost, 0.03; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Expected daily cost %.2f, got %.4f", want, got)
	}
}

func TestReport_EmptyLedger(t *testing.T) {
	store := &mockLedgerStore{}
	monthly, daily, err := NewAggregator(store).Report(context.Background(), "user-1", time.Now())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if monthly != (MonthlyStats{}) || daily != (DailyStats{}) {
		t.Errorf("Expected zero stats, got %+v %+v", monthly, daily)
	}
}

func TestReport_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	store := &mockLedgerStore{
		entriesFunc: func(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error) {
			return []ledger.Entry{
				{Model: ledger.ModelPremiumChat, EstimatedCost: 0.05, CreatedAt: now},
			}, nil
		},
	}

	agg := NewAggregator(store)
	m1, d1, err := agg.Report(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	m2, d2, err := agg.Report(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if m1 != m2 || d1 != d2 {
		t.Errorf("Back-to-back reports over an unchanged ledger must match: %+v/%+v vs %+v/%+v", m1, d1, m2, d2)
	}
}

func TestReport_StoreError(t *testing.T) {
	store := &mockLedgerStore{
		entriesFunc: func(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, _, err := NewAggregator(store).Report(context.Background(), "user-1", time.Now())
	if err == nil {
		t.Fatalf("Expected error from store failure")
	}
}

func TestWindowBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)

	if got := MonthStart(now); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Wrong month start: %v", got)
	}
	if got := DayStart(now); !got.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Wrong day start: %v", got)
	}
}
