// Package gap computes goal gap analysis: per-leaf-goal shortfall,
// progress, and the addressable TAM pool matched on the goal's tag.
package gap

import (
	"math"
	"sort"

	"github.com/sells-group/scout/internal/model"
)

// Report is the full gap analysis: per-goal rows sorted by descending
// gap plus aggregate totals.
type Report struct {
	Goals                 []model.GapReport       `json:"goals"`
	TotalGap              float64                 `json:"total_gap"`
	TotalAddressableValue float64                 `json:"total_addressable_value"`
	StatusCounts          map[model.GapStatus]int `json:"status_counts"`
}

// Aggregate computes the gap report for the leaf goals in goals against
// the candidate pool. Pure: neither input is mutated. A leaf goal is one
// carrying a category or vertical tag with no children in the slice.
func Aggregate(goals []model.GoalNode, pool []model.TAMAccount) Report {
	hasChildren := make(map[string]bool, len(goals))
	for _, g := range goals {
		if g.ParentID != nil {
			hasChildren[*g.ParentID] = true
		}
	}

	report := Report{
		StatusCounts: map[model.GapStatus]int{},
	}

	for _, g := range goals {
		if (g.Category == "" && g.Vertical == "") || hasChildren[g.ID] {
			continue
		}

		row := model.GapReport{
			Goal:        g,
			Gap:         math.Max(0, g.TargetValue-g.CurrentValue),
			ProgressPct: progressPct(g.CurrentValue, g.TargetValue),
		}

		for _, acct := range pool {
			if !poolMatch(g, acct) {
				continue
			}
			row.AddressableCount++
			if acct.EstimatedDealValue != nil {
				row.AddressableValue += float64(*acct.EstimatedDealValue)
			}
		}

		row.Status = StatusFor(row.ProgressPct)

		report.Goals = append(report.Goals, row)
		report.TotalGap += row.Gap
		report.TotalAddressableValue += row.AddressableValue
		report.StatusCounts[row.Status]++
	}

	sort.SliceStable(report.Goals, func(i, j int) bool {
		return report.Goals[i].Gap > report.Goals[j].Gap
	})

	return report
}

// Remaining is the unallocated portion of a parent goal's target after
// subtracting its children's targets.
func Remaining(parent model.GoalNode, children []model.GoalNode) float64 {
	remaining := parent.TargetValue
	for _, c := range children {
		remaining -= c.TargetValue
	}
	return remaining
}

// StatusFor maps a progress percentage onto the four-tier gap band.
func StatusFor(progressPct int) model.GapStatus {
	switch {
	case progressPct >= 100:
		return model.GapAchieved
	case progressPct >= 70:
		return model.GapOnTrack
	case progressPct >= 40:
		return model.GapAtRisk
	default:
		return model.GapOffTrack
	}
}

// progressPct is current/target rounded to a whole percent; zero targets
// report zero progress rather than dividing by zero.
func progressPct(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(100 * current / target))
}

// poolMatch reports whether a TAM account belongs to a goal's
// addressable pool: vertical tag match, or category tag match when the
// goal has no vertical.
func poolMatch(g model.GoalNode, acct model.TAMAccount) bool {
	if g.Vertical != "" {
		return acct.Vertical == g.Vertical
	}
	return acct.Vertical == g.Category
}
