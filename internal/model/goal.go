package model

import (
	"time"
)

// GoalNode is one node in the goal hierarchy. Leaf goals carry a
// category or vertical tag; parent goals roll up their children.
// CurrentValue is maintained externally and never derived here.
type GoalNode struct {
	ID           string    `json:"id" db:"goal_id"`
	Name         string    `json:"name" db:"name"`
	GoalType     string    `json:"goal_type" db:"goal_type"`
	Category     string    `json:"category,omitempty" db:"category"`
	Vertical     string    `json:"vertical,omitempty" db:"vertical"`
	TargetValue  float64   `json:"target_value" db:"target_value"`
	CurrentValue float64   `json:"current_value" db:"current_value"`
	ParentID     *string   `json:"parent_goal_id,omitempty" db:"parent_goal_id"`
	TargetYear   int       `json:"target_year" db:"target_year"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// GapStatus is the qualitative progress tier for a goal.
type GapStatus string

const (
	GapAchieved GapStatus = "achieved"
	GapOnTrack  GapStatus = "on_track"
	GapAtRisk   GapStatus = "at_risk"
	GapOffTrack GapStatus = "off_track"
)

// GapReport is the gap analysis for one leaf goal: shortfall against
// target plus the addressable TAM pool matched on the goal's tag.
type GapReport struct {
	Goal             GoalNode  `json:"goal"`
	Gap              float64   `json:"gap"`
	ProgressPct      int       `json:"progress_pct"`
	AddressableValue float64   `json:"addressable_value"`
	AddressableCount int       `json:"addressable_count"`
	Status           GapStatus `json:"status"`
}
