// Package monitoring watches the planning core for conditions worth
// paging on: accounts in the critical health band, stale or missing
// health snapshots, and goals whose addressable pool cannot cover the
// remaining gap. Alerts go out over a webhook.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scout/internal/gap"
	"github.com/sells-group/scout/internal/model"
	"github.com/sells-group/scout/internal/store"
)

// MetricsSnapshot holds a point-in-time view of portfolio health.
type MetricsSnapshot struct {
	// Health coverage.
	PlansTotal  int                `json:"plans_total"`
	PlansScored int                `json:"plans_scored"`
	BandCounts  map[model.Band]int `json:"band_counts"`

	// Plans never scored, or scored longer ago than the stale cutoff.
	UnscoredPlans  int `json:"unscored_plans"`
	StaleSnapshots int `json:"stale_snapshots"`

	// Goal coverage over the active goal tree.
	TotalGap              float64 `json:"total_gap"`
	TotalAddressableValue float64 `json:"total_addressable_value"`
	UncoveredGoals        int     `json:"uncovered_goals"`

	StaleAfter  time.Duration `json:"stale_after"`
	CollectedAt time.Time     `json:"collected_at"`
}

// Collector gathers a metrics snapshot from the store.
type Collector struct {
	store      store.Store
	staleAfter time.Duration
}

// NewCollector creates a collector. staleAfter bounds how old a health
// snapshot may be before it counts as stale.
func NewCollector(st store.Store, staleAfter time.Duration) *Collector {
	if staleAfter <= 0 {
		staleAfter = 7 * 24 * time.Hour
	}
	return &Collector{store: st, staleAfter: staleAfter}
}

// Collect gathers the current snapshot. Disqualified TAM accounts are
// excluded from the addressable pool, matching the gap report.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		BandCounts:  map[model.Band]int{},
		StaleAfter:  c.staleAfter,
		CollectedAt: time.Now().UTC(),
	}
	cutoff := snap.CollectedAt.Add(-c.staleAfter)

	plans, err := c.store.ListAccountPlans(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list account plans")
	}
	snap.PlansTotal = len(plans)

	for _, p := range plans {
		hs, err := c.store.GetHealthSnapshot(ctx, p.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "monitoring: health snapshot for %s", p.ID)
		}
		if hs == nil {
			snap.UnscoredPlans++
			continue
		}
		snap.PlansScored++
		snap.BandCounts[hs.Band]++
		if hs.ComputedAt.Before(cutoff) {
			snap.StaleSnapshots++
		}
	}

	goals, err := c.store.ListGoals(ctx, store.GoalFilter{ActiveOnly: true})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list goals")
	}
	accounts, err := c.store.ListTAMAccounts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list tam accounts")
	}
	pool := accounts[:0:0]
	for _, a := range accounts {
		if a.Status != model.TAMStatusDisqualified {
			pool = append(pool, a)
		}
	}

	report := gap.Aggregate(goals, pool)
	snap.TotalGap = report.TotalGap
	snap.TotalAddressableValue = report.TotalAddressableValue
	for _, row := range report.Goals {
		if row.Gap > 0 && row.AddressableValue < row.Gap {
			snap.UncoveredGoals++
		}
	}

	return snap, nil
}
