// Package store persists the account-planning domain: TAM accounts,
// account plans, health signals and snapshots, and the goal hierarchy.
// Two backends implement the same interface; PostgreSQL is the primary
// and SQLite the zero-dependency fallback for local work.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/sells-group/scout/internal/model"
)

// TAMFilter specifies criteria for querying TAM accounts.
type TAMFilter struct {
	Status   model.TAMStatus `json:"status,omitempty"`
	Vertical string          `json:"vertical,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// GoalFilter specifies criteria for listing goals.
type GoalFilter struct {
	TargetYear int    `json:"target_year,omitempty"`
	Category   string `json:"category,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

// Store defines the persistence interface for the planning core.
type Store interface {
	// TAM accounts
	ListTAMAccounts(ctx context.Context) ([]model.TAMAccount, error)
	QueryTAMAccounts(ctx context.Context, filter TAMFilter) ([]model.TAMAccount, error)
	InsertTAMAccounts(ctx context.Context, accounts []model.TAMAccount) error
	UpdateTAMAccount(ctx context.Context, id string, fields map[string]any) error
	GetTAMAccount(ctx context.Context, id string) (*model.TAMAccount, error)

	// Account plans
	ListAccountPlans(ctx context.Context) ([]model.AccountPlan, error)
	InsertAccountPlans(ctx context.Context, plans []model.AccountPlan) error
	GetAccountPlan(ctx context.Context, id string) (*model.AccountPlan, error)

	// Health signals
	ListCompletedActions(ctx context.Context, accountPlanID string, limit int) ([]time.Time, error)
	ListOpenRisks(ctx context.Context, accountPlanID string) ([]model.Risk, error)
	ListOpenPursuits(ctx context.Context, accountPlanID string) ([]model.Pursuit, error)
	ListStakeholders(ctx context.Context, accountPlanID string) ([]model.Stakeholder, error)
	ListActiveThemes(ctx context.Context, accountPlanID string) ([]model.Theme, error)
	CountRecentSignals(ctx context.Context, accountPlanID string, since time.Time) (int, error)

	// Health snapshots
	UpsertHealthSnapshot(ctx context.Context, snap *model.HealthSnapshot) error
	GetHealthSnapshot(ctx context.Context, accountPlanID string) (*model.HealthSnapshot, error)

	// Goals
	ListGoals(ctx context.Context, filter GoalFilter) ([]model.GoalNode, error)
	UpsertGoals(ctx context.Context, goals []model.GoalNode) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// updatableTAMColumns whitelists the columns UpdateTAMAccount may touch.
// Field diffs are the only callers; anything else is a programming error.
var updatableTAMColumns = map[string]bool{
	"company_name":         true,
	"website":              true,
	"vertical":             true,
	"fit_tier":             true,
	"estimated_deal_value": true,
	"company_summary":      true,
	"status":               true,
	"account_plan_id":      true,
}

// orderedColumns returns field names sorted so generated SQL is stable.
func orderedColumns(fields map[string]any) []string {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
