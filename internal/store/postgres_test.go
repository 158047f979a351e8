package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scout/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetTAMAccount_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM tam_accounts WHERE tam_account_id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	acct, err := s.GetTAMAccount(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, acct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTAMAccounts(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"tam_account_id", "company_name", "website", "vertical",
		"fit_tier", "estimated_deal_value", "company_summary", "status", "account_plan_id",
		"created_at", "updated_at"}).
		AddRow("t-1", "Acme Inc", "acme.com", "Logistics", "A", nil, "", "Prospecting", nil, now, now).
		AddRow("t-2", "Globex", "", "Retail", "", nil, "", "Qualified", nil, now, now)

	mock.ExpectQuery(`SELECT .* FROM tam_accounts ORDER BY company_name`).
		WillReturnRows(rows)

	accounts, err := s.ListTAMAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Acme Inc", accounts[0].CompanyName)
	assert.Equal(t, model.TAMStatusQualified, accounts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryTAMAccounts_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"tam_account_id", "company_name", "website", "vertical",
		"fit_tier", "estimated_deal_value", "company_summary", "status", "account_plan_id",
		"created_at", "updated_at"}).
		AddRow("t-1", "Acme Inc", "", "Logistics", "", nil, "", "Prospecting", nil, now, now)

	mock.ExpectQuery(`FROM tam_accounts WHERE true AND status = \$1 AND vertical = \$2`).
		WithArgs("Prospecting", "Logistics", 100).
		WillReturnRows(rows)

	accounts, err := s.QueryTAMAccounts(context.Background(), TAMFilter{
		Status:   model.TAMStatusProspecting,
		Vertical: "Logistics",
	})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertTAMAccounts_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	columns := []string{"tam_account_id", "company_name", "website", "vertical", "fit_tier",
		"estimated_deal_value", "company_summary", "status", "account_plan_id",
		"created_at", "updated_at"}
	mock.ExpectCopyFrom(pgx.Identifier{"tam_accounts"}, columns).WillReturnResult(2)

	err := s.InsertTAMAccounts(context.Background(), []model.TAMAccount{
		{ID: "t-1", CompanyName: "Acme Inc", Status: model.TAMStatusProspecting, CreatedAt: now, UpdatedAt: now},
		{ID: "t-2", CompanyName: "Globex", Status: model.TAMStatusProspecting, CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateTAMAccount(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE tam_accounts SET fit_tier = \$2, vertical = \$3, updated_at = \$4 WHERE tam_account_id = \$1`).
		WithArgs("t-1", "A", "Healthcare", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateTAMAccount(context.Background(), "t-1", map[string]any{
		"vertical": "Healthcare",
		"fit_tier": "A",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateTAMAccount_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE tam_accounts SET`).
		WithArgs("missing", "Healthcare", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateTAMAccount(context.Background(), "missing", map[string]any{"vertical": "Healthcare"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateTAMAccount_RejectsUnknownColumn(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.UpdateTAMAccount(context.Background(), "t-1", map[string]any{
		"company_name; DROP TABLE tam_accounts": "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not updatable")
}

func TestPostgresStore_GetAccountPlan_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM account_plans WHERE account_plan_id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	plan, err := s.GetAccountPlan(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertAccountPlans_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	columns := []string{"account_plan_id", "account_name", "account_type", "vertical",
		"nps_score", "csat_score", "usage_pct", "created_at", "updated_at"}
	mock.ExpectCopyFrom(pgx.Identifier{"account_plans"}, columns).WillReturnResult(1)

	err := s.InsertAccountPlans(context.Background(), []model.AccountPlan{
		{ID: "ap-1", AccountName: "Acme Inc", AccountType: model.AccountTypeProspect, CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertHealthSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO account_health_scores .* ON CONFLICT \(account_plan_id\) DO UPDATE SET`).
		WithArgs("ap-1", "outbound", 85, "healthy", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertHealthSnapshot(context.Background(), &model.HealthSnapshot{
		AccountPlanID: "ap-1",
		Profile:       model.ProfileOutbound,
		Total:         85,
		Band:          model.BandHealthy,
		Components:    []model.ScoreComponent{{Name: "engagement", Score: 25, Max: 25}},
		ComputedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetHealthSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	components, err := json.Marshal([]model.ScoreComponent{{Name: "engagement", Score: 25, Max: 25}})
	require.NoError(t, err)
	summary, err := json.Marshal(model.SignalSummary{StalledDeals: 1})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"account_plan_id", "profile", "total_score", "health_band",
		"components", "signal_summary", "computed_at"}).
		AddRow("ap-1", "outbound", 85, "healthy", components, summary, now)

	mock.ExpectQuery(`FROM account_health_scores WHERE account_plan_id = \$1`).
		WithArgs("ap-1").
		WillReturnRows(rows)

	snap, err := s.GetHealthSnapshot(context.Background(), "ap-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 85, snap.Total)
	assert.Equal(t, model.BandHealthy, snap.Band)
	assert.Equal(t, 1, snap.Signals.StalledDeals)
	require.Len(t, snap.Components, 1)
	assert.Equal(t, "engagement", snap.Components[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountRecentSignals(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Now().Add(-30 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM account_signals`).
		WithArgs("ap-1", since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := s.CountRecentSignals(context.Background(), "ap-1", since)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListOpenRisks(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"risk_id", "account_plan_id", "severity", "status", "created_at"}).
		AddRow("r-1", "ap-1", "critical", "open", now)

	mock.ExpectQuery(`FROM risks WHERE account_plan_id = \$1 AND status = 'open'`).
		WithArgs("ap-1").
		WillReturnRows(rows)

	risks, err := s.ListOpenRisks(context.Background(), "ap-1")
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, model.RiskCritical, risks[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
