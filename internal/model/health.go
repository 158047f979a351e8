package model

import (
	"time"
)

// Profile selects the health scoring ruleset. Prospect-like accounts use
// the outbound profile, customer-like accounts the inbound profile.
type Profile string

const (
	ProfileOutbound Profile = "outbound"
	ProfileInbound  Profile = "inbound"
)

// Band is the qualitative health tier derived from the composite score.
type Band string

const (
	BandHealthy  Band = "healthy"
	BandMonitor  Band = "monitor"
	BandAtRisk   Band = "at_risk"
	BandCritical Band = "critical"
)

// ScoreComponent is one weighted sub-score of a health computation,
// recomputed fresh on every scoring invocation.
type ScoreComponent struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Max         int    `json:"max"`
	Explanation string `json:"explanation"`
}

// SignalSummary carries profile-specific counts of warning indicators for
// the health breakdown display. Only the fields for the snapshot's
// profile are populated.
type SignalSummary struct {
	// Outbound
	StalledDeals    int `json:"stalled_deals,omitempty"`
	MissingChampion int `json:"missing_champion,omitempty"`
	InactiveThemes  int `json:"inactive_themes,omitempty"`
	// Inbound
	EscalationRisks int `json:"escalation_risks,omitempty"`
	SentimentAlerts int `json:"sentiment_alerts,omitempty"`
	PatternWarnings int `json:"pattern_warnings,omitempty"`
}

// HealthSnapshot is the persisted composite health score for an account
// plan. Each computation supersedes the previous snapshot; last write
// wins, no history is retained.
type HealthSnapshot struct {
	AccountPlanID string           `json:"account_plan_id" db:"account_plan_id"`
	Profile       Profile          `json:"profile" db:"profile"`
	Total         int              `json:"total_score" db:"total_score"`
	Band          Band             `json:"health_band" db:"health_band"`
	Components    []ScoreComponent `json:"components" db:"components"`
	Signals       SignalSummary    `json:"signal_summary"`
	ComputedAt    time.Time        `json:"computed_at" db:"computed_at"`
}

// RiskSeverity grades an open risk.
type RiskSeverity string

const (
	RiskLow      RiskSeverity = "low"
	RiskMedium   RiskSeverity = "medium"
	RiskHigh     RiskSeverity = "high"
	RiskCritical RiskSeverity = "critical"
)

// Risk is an open account risk used as a scoring signal.
type Risk struct {
	ID            string       `json:"id" db:"risk_id"`
	AccountPlanID string       `json:"account_plan_id" db:"account_plan_id"`
	Severity      RiskSeverity `json:"severity" db:"severity"`
	Status        string       `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// Pursuit is an active sales opportunity on an account plan. StagePrior
// holds the stage as of thirty days ago when history is available; nil
// means no movement signal.
type Pursuit struct {
	ID             string    `json:"id" db:"pursuit_id"`
	AccountPlanID  string    `json:"account_plan_id" db:"account_plan_id"`
	Name           string    `json:"name" db:"name"`
	Stage          string    `json:"stage" db:"stage"`
	StagePrior     *string   `json:"stage_30d_ago,omitempty" db:"stage_30d_ago"`
	EstimatedValue *int64    `json:"estimated_value,omitempty" db:"estimated_value"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Stakeholder sentiment values.
const (
	SentimentChampion  = "champion"
	SentimentSupporter = "supporter"
	SentimentNeutral   = "neutral"
	SentimentSkeptic   = "skeptic"
	SentimentBlocker   = "blocker"
)

// Stakeholder is a mapped contact on an account plan.
type Stakeholder struct {
	ID            string `json:"id" db:"stakeholder_id"`
	AccountPlanID string `json:"account_plan_id" db:"account_plan_id"`
	Sentiment     string `json:"sentiment,omitempty" db:"sentiment"`
	IsPlaceholder bool   `json:"is_placeholder" db:"is_placeholder"`
}

// Theme is an active research thread ("spark") on an account plan.
type Theme struct {
	ID            string    `json:"id" db:"theme_id"`
	AccountPlanID string    `json:"account_plan_id" db:"account_plan_id"`
	Status        string    `json:"status" db:"status"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
