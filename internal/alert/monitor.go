// Package alert runs the advisory monthly-cost monitor. It only logs:
// cost warnings never block requests, the quota policy does that.
package alert

import (
	"context"
	"log"
	"time"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/usage"
)

type Monitor struct {
	store     ledger.Store
	threshold float64
	interval  time.Duration
}

func NewMonitor(store ledger.Store, threshold float64, interval time.Duration) *Monitor {
	return &Monitor{store: store, threshold: threshold, interval: interval}
}

// Run checks periodically until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx, time.Now())
		}
	}
}

// Check logs every user whose month-to-date cost exceeds the alert
// threshold. Storage failures are logged and skipped; the next tick
// tries again.
func (m *Monitor) Check(ctx context.Context, now time.Time) {
	users, err := m.store.UsersOverCost(ctx, usage.MonthStart(now), m.threshold)
	if err != nil {
		log.Printf("alert: failed to query user costs: %v", err)
		return
	}

	for _, u := range users {
		log.Printf("alert: user %s at $%.2f this month (threshold $%.2f)", u.UserID, u.TotalCost, m.threshold)
	}
}
