package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

type mockStore struct {
	overCostFunc func(ctx context.Context, since time.Time, threshold float64) ([]ledger.UserCost, error)
}

func (m *mockStore) Append(ctx context.Context, entry *ledger.Entry) error { return nil }

func (m *mockStore) EntriesSince(ctx context.Context, userID string, since time.Time) ([]ledger.Entry, error) {
	return nil, nil
}

func (m *mockStore) UsersOverCost(ctx context.Context, since time.Time, threshold float64) ([]ledger.UserCost, error) {
	if m.overCostFunc != nil {
		return m.overCostFunc(ctx, since, threshold)
	}
	return nil, nil
}

func TestCheck_QueriesMonthWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	var gotSince time.Time
	var gotThreshold float64

	store := &mockStore{overCostFunc: func(ctx context.Context, since time.Time, threshold float64) ([]ledger.UserCost, error) {
		gotSince = since
		gotThreshold = threshold
		return []ledger.UserCost{{UserID: "user-1", TotalCost: 12.34}}, nil
	}}

	NewMonitor(store, 10.00, time.Hour).Check(context.Background(), now)

	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !gotSince.Equal(want) {
		t.Errorf("Expected month start %v, got %v", want, gotSince)
	}
	if gotThreshold != 10.00 {
		t.Errorf("Expected threshold 10.00, got %f", gotThreshold)
	}
}

func TestCheck_StoreErrorIsLoggedNotFatal(t *testing.T) {
	store := &mockStore{overCostFunc: func(ctx context.Context, since time.Time, threshold float64) ([]ledger.UserCost, error) {
		return nil, errors.New("connection refused")
	}}

	// Must not panic; the next tick retries.
	NewMonitor(store, 10.00, time.Hour).Check(context.Background(), time.Now())
}
