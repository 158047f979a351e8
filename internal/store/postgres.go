package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/scout/internal/db"
	"github.com/sells-group/scout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations. Health
// recomputes hit six of these per account.
var preparedStatements = map[string]string{
	"get_account_plan":      `SELECT account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at FROM account_plans WHERE account_plan_id = $1`,
	"list_open_risks":       `SELECT risk_id, account_plan_id, severity, status, created_at FROM risks WHERE account_plan_id = $1 AND status = 'open'`,
	"list_open_pursuits":    `SELECT pursuit_id, account_plan_id, name, stage, stage_30d_ago, estimated_value, updated_at FROM pursuits WHERE account_plan_id = $1 AND status = 'open'`,
	"list_stakeholders":     `SELECT stakeholder_id, account_plan_id, sentiment, is_placeholder FROM stakeholders WHERE account_plan_id = $1`,
	"list_active_themes":    `SELECT theme_id, account_plan_id, status, updated_at FROM scout_themes WHERE account_plan_id = $1 AND status = 'active'`,
	"count_recent_signals":  `SELECT COUNT(*) FROM account_signals WHERE account_plan_id = $1 AND created_at >= $2`,
	"list_completed_actions": `SELECT completed_at FROM action_items WHERE account_plan_id = $1 AND status = 'completed' AND completed_at IS NOT NULL ORDER BY completed_at DESC LIMIT $2`,
	"get_health_snapshot":   `SELECT account_plan_id, profile, total_score, health_band, components, signal_summary, computed_at FROM account_health_scores WHERE account_plan_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., goal bulk upserts).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS account_plans (
	account_plan_id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_name    TEXT NOT NULL,
	account_type    TEXT NOT NULL DEFAULT 'prospect',
	vertical        TEXT NOT NULL DEFAULT '',
	nps_score       DOUBLE PRECISION,
	csat_score      DOUBLE PRECISION,
	usage_pct       DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tam_accounts (
	tam_account_id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name         TEXT NOT NULL,
	website              TEXT NOT NULL DEFAULT '',
	vertical             TEXT NOT NULL DEFAULT '',
	fit_tier             TEXT NOT NULL DEFAULT '',
	estimated_deal_value BIGINT,
	company_summary      TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'Prospecting',
	account_plan_id      TEXT REFERENCES account_plans(account_plan_id),
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tam_accounts_status ON tam_accounts(status);
CREATE INDEX IF NOT EXISTS idx_tam_accounts_vertical ON tam_accounts(vertical);
CREATE INDEX IF NOT EXISTS idx_tam_accounts_plan ON tam_accounts(account_plan_id);

CREATE TABLE IF NOT EXISTS account_health_scores (
	account_plan_id TEXT PRIMARY KEY REFERENCES account_plans(account_plan_id),
	profile         TEXT NOT NULL,
	total_score     INTEGER NOT NULL,
	health_band     TEXT NOT NULL,
	components      JSONB NOT NULL,
	signal_summary  JSONB NOT NULL,
	computed_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS goals (
	goal_id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name           TEXT NOT NULL,
	goal_type      TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	vertical       TEXT NOT NULL DEFAULT '',
	target_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_value  DOUBLE PRECISION NOT NULL DEFAULT 0,
	parent_goal_id TEXT REFERENCES goals(goal_id),
	target_year    INTEGER NOT NULL DEFAULT 0,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_goals_parent ON goals(parent_goal_id);
CREATE INDEX IF NOT EXISTS idx_goals_year ON goals(target_year);

CREATE TABLE IF NOT EXISTS risks (
	risk_id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	severity        TEXT NOT NULL DEFAULT 'medium',
	status          TEXT NOT NULL DEFAULT 'open',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_risks_plan_status ON risks(account_plan_id, status);

CREATE TABLE IF NOT EXISTS pursuits (
	pursuit_id      TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	name            TEXT NOT NULL DEFAULT '',
	stage           TEXT NOT NULL DEFAULT 'discovery',
	stage_30d_ago   TEXT,
	estimated_value BIGINT,
	status          TEXT NOT NULL DEFAULT 'open',
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pursuits_plan_status ON pursuits(account_plan_id, status);

CREATE TABLE IF NOT EXISTS stakeholders (
	stakeholder_id  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	sentiment       TEXT NOT NULL DEFAULT '',
	is_placeholder  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_stakeholders_plan ON stakeholders(account_plan_id);

CREATE TABLE IF NOT EXISTS scout_themes (
	theme_id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	status          TEXT NOT NULL DEFAULT 'active',
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scout_themes_plan_status ON scout_themes(account_plan_id, status);

CREATE TABLE IF NOT EXISTS action_items (
	action_id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	status          TEXT NOT NULL DEFAULT 'open',
	completed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_action_items_plan_completed ON action_items(account_plan_id, completed_at DESC);

CREATE TABLE IF NOT EXISTS account_signals (
	signal_id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	kind            TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_account_signals_plan_created ON account_signals(account_plan_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const tamAccountColumns = `tam_account_id, company_name, website, vertical, fit_tier, estimated_deal_value, company_summary, status, account_plan_id, created_at, updated_at`

func (s *PostgresStore) ListTAMAccounts(ctx context.Context) ([]model.TAMAccount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tamAccountColumns+` FROM tam_accounts ORDER BY company_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tam accounts")
	}
	defer rows.Close()
	return scanTAMAccounts(rows)
}

func (s *PostgresStore) QueryTAMAccounts(ctx context.Context, filter TAMFilter) ([]model.TAMAccount, error) {
	query := `SELECT ` + tamAccountColumns + ` FROM tam_accounts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Vertical != "" {
		query += fmt.Sprintf(` AND vertical = $%d`, argIdx)
		args = append(args, filter.Vertical)
		argIdx++
	}
	query += ` ORDER BY company_name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query tam accounts")
	}
	defer rows.Close()
	return scanTAMAccounts(rows)
}

func (s *PostgresStore) GetTAMAccount(ctx context.Context, id string) (*model.TAMAccount, error) {
	var a model.TAMAccount
	err := s.pool.QueryRow(ctx,
		`SELECT `+tamAccountColumns+` FROM tam_accounts WHERE tam_account_id = $1`,
		id,
	).Scan(&a.ID, &a.CompanyName, &a.Website, &a.Vertical, &a.FitTier,
		&a.EstimatedDealValue, &a.CompanySummary, &a.Status, &a.AccountPlanID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get tam account %s", id)
	}
	return &a, nil
}

// InsertTAMAccounts bulk-inserts new accounts over the COPY protocol.
func (s *PostgresStore) InsertTAMAccounts(ctx context.Context, accounts []model.TAMAccount) error {
	rows := make([][]any, len(accounts))
	for i, a := range accounts {
		rows[i] = []any{a.ID, a.CompanyName, a.Website, a.Vertical, a.FitTier,
			a.EstimatedDealValue, a.CompanySummary, string(a.Status), a.AccountPlanID,
			a.CreatedAt, a.UpdatedAt}
	}

	columns := []string{"tam_account_id", "company_name", "website", "vertical", "fit_tier",
		"estimated_deal_value", "company_summary", "status", "account_plan_id",
		"created_at", "updated_at"}
	_, err := db.CopyFrom(ctx, s.pool, "tam_accounts", columns, rows)
	return eris.Wrap(err, "postgres: insert tam accounts")
}

func (s *PostgresStore) UpdateTAMAccount(ctx context.Context, id string, fields map[string]any) error {
	setClause, args, err := buildUpdate(fields, id)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tam_accounts SET `+setClause+` WHERE tam_account_id = $1`,
		args...,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update tam account %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("tam account not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) ListAccountPlans(ctx context.Context) ([]model.AccountPlan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at
		 FROM account_plans ORDER BY account_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list account plans")
	}
	defer rows.Close()

	var plans []model.AccountPlan
	for rows.Next() {
		var p model.AccountPlan
		if err := rows.Scan(&p.ID, &p.AccountName, &p.AccountType, &p.Vertical,
			&p.NPSScore, &p.CSATScore, &p.UsagePct, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan account plan")
		}
		plans = append(plans, p)
	}
	return plans, eris.Wrap(rows.Err(), "postgres: list account plans iterate")
}

func (s *PostgresStore) InsertAccountPlans(ctx context.Context, plans []model.AccountPlan) error {
	rows := make([][]any, len(plans))
	for i, p := range plans {
		rows[i] = []any{p.ID, p.AccountName, string(p.AccountType), p.Vertical,
			p.NPSScore, p.CSATScore, p.UsagePct, p.CreatedAt, p.UpdatedAt}
	}

	columns := []string{"account_plan_id", "account_name", "account_type", "vertical",
		"nps_score", "csat_score", "usage_pct", "created_at", "updated_at"}
	_, err := db.CopyFrom(ctx, s.pool, "account_plans", columns, rows)
	return eris.Wrap(err, "postgres: insert account plans")
}

func (s *PostgresStore) GetAccountPlan(ctx context.Context, id string) (*model.AccountPlan, error) {
	var p model.AccountPlan
	err := s.pool.QueryRow(ctx,
		`SELECT account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at
		 FROM account_plans WHERE account_plan_id = $1`,
		id,
	).Scan(&p.ID, &p.AccountName, &p.AccountType, &p.Vertical,
		&p.NPSScore, &p.CSATScore, &p.UsagePct, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get account plan %s", id)
	}
	return &p, nil
}

func (s *PostgresStore) ListCompletedActions(ctx context.Context, accountPlanID string, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT completed_at FROM action_items
		 WHERE account_plan_id = $1 AND status = 'completed' AND completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT $2`,
		accountPlanID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list completed actions")
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, eris.Wrap(err, "postgres: scan completed action")
		}
		times = append(times, at)
	}
	return times, eris.Wrap(rows.Err(), "postgres: list completed actions iterate")
}

func (s *PostgresStore) ListOpenRisks(ctx context.Context, accountPlanID string) ([]model.Risk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT risk_id, account_plan_id, severity, status, created_at FROM risks
		 WHERE account_plan_id = $1 AND status = 'open'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list open risks")
	}
	defer rows.Close()

	var risks []model.Risk
	for rows.Next() {
		var r model.Risk
		if err := rows.Scan(&r.ID, &r.AccountPlanID, &r.Severity, &r.Status, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan risk")
		}
		risks = append(risks, r)
	}
	return risks, eris.Wrap(rows.Err(), "postgres: list open risks iterate")
}

func (s *PostgresStore) ListOpenPursuits(ctx context.Context, accountPlanID string) ([]model.Pursuit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT pursuit_id, account_plan_id, name, stage, stage_30d_ago, estimated_value, updated_at FROM pursuits
		 WHERE account_plan_id = $1 AND status = 'open'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list open pursuits")
	}
	defer rows.Close()

	var pursuits []model.Pursuit
	for rows.Next() {
		var p model.Pursuit
		if err := rows.Scan(&p.ID, &p.AccountPlanID, &p.Name, &p.Stage,
			&p.StagePrior, &p.EstimatedValue, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pursuit")
		}
		pursuits = append(pursuits, p)
	}
	return pursuits, eris.Wrap(rows.Err(), "postgres: list open pursuits iterate")
}

func (s *PostgresStore) ListStakeholders(ctx context.Context, accountPlanID string) ([]model.Stakeholder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT stakeholder_id, account_plan_id, sentiment, is_placeholder FROM stakeholders
		 WHERE account_plan_id = $1`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stakeholders")
	}
	defer rows.Close()

	var stakeholders []model.Stakeholder
	for rows.Next() {
		var st model.Stakeholder
		if err := rows.Scan(&st.ID, &st.AccountPlanID, &st.Sentiment, &st.IsPlaceholder); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stakeholder")
		}
		stakeholders = append(stakeholders, st)
	}
	return stakeholders, eris.Wrap(rows.Err(), "postgres: list stakeholders iterate")
}

func (s *PostgresStore) ListActiveThemes(ctx context.Context, accountPlanID string) ([]model.Theme, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT theme_id, account_plan_id, status, updated_at FROM scout_themes
		 WHERE account_plan_id = $1 AND status = 'active'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list active themes")
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.AccountPlanID, &t.Status, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan theme")
		}
		themes = append(themes, t)
	}
	return themes, eris.Wrap(rows.Err(), "postgres: list active themes iterate")
}

func (s *PostgresStore) CountRecentSignals(ctx context.Context, accountPlanID string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM account_signals WHERE account_plan_id = $1 AND created_at >= $2`,
		accountPlanID, since,
	).Scan(&count)
	return count, eris.Wrap(err, "postgres: count recent signals")
}

func (s *PostgresStore) UpsertHealthSnapshot(ctx context.Context, snap *model.HealthSnapshot) error {
	componentsJSON, err := json.Marshal(snap.Components)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal components")
	}
	summaryJSON, err := json.Marshal(snap.Signals)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal signal summary")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO account_health_scores (account_plan_id, profile, total_score, health_band, components, signal_summary, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (account_plan_id) DO UPDATE SET
		   profile = $2, total_score = $3, health_band = $4, components = $5, signal_summary = $6, computed_at = $7`,
		snap.AccountPlanID, string(snap.Profile), snap.Total, string(snap.Band),
		componentsJSON, summaryJSON, snap.ComputedAt,
	)
	return eris.Wrap(err, "postgres: upsert health snapshot")
}

func (s *PostgresStore) GetHealthSnapshot(ctx context.Context, accountPlanID string) (*model.HealthSnapshot, error) {
	var snap model.HealthSnapshot
	var componentsJSON, summaryJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT account_plan_id, profile, total_score, health_band, components, signal_summary, computed_at
		 FROM account_health_scores WHERE account_plan_id = $1`,
		accountPlanID,
	).Scan(&snap.AccountPlanID, &snap.Profile, &snap.Total, &snap.Band,
		&componentsJSON, &summaryJSON, &snap.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get health snapshot %s", accountPlanID)
	}

	if err := json.Unmarshal(componentsJSON, &snap.Components); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal components")
	}
	if err := json.Unmarshal(summaryJSON, &snap.Signals); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal signal summary")
	}
	return &snap, nil
}

func (s *PostgresStore) ListGoals(ctx context.Context, filter GoalFilter) ([]model.GoalNode, error) {
	query := `SELECT goal_id, name, goal_type, category, vertical, target_value, current_value, parent_goal_id, target_year, is_active, updated_at
	          FROM goals WHERE true`
	args := []any{}
	argIdx := 1

	if filter.TargetYear > 0 {
		query += fmt.Sprintf(` AND target_year = $%d`, argIdx)
		args = append(args, filter.TargetYear)
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list goals")
	}
	defer rows.Close()

	var goals []model.GoalNode
	for rows.Next() {
		var g model.GoalNode
		if err := rows.Scan(&g.ID, &g.Name, &g.GoalType, &g.Category, &g.Vertical,
			&g.TargetValue, &g.CurrentValue, &g.ParentID, &g.TargetYear,
			&g.IsActive, &g.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan goal")
		}
		goals = append(goals, g)
	}
	return goals, eris.Wrap(rows.Err(), "postgres: list goals iterate")
}

// UpsertGoals bulk-upserts goal nodes keyed on goal_id, used by goal
// imports and target updates.
func (s *PostgresStore) UpsertGoals(ctx context.Context, goals []model.GoalNode) error {
	rows := make([][]any, len(goals))
	for i, g := range goals {
		rows[i] = []any{g.ID, g.Name, g.GoalType, g.Category, g.Vertical,
			g.TargetValue, g.CurrentValue, g.ParentID, g.TargetYear, g.IsActive, g.UpdatedAt}
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "goals",
		Columns: []string{"goal_id", "name", "goal_type", "category", "vertical",
			"target_value", "current_value", "parent_goal_id", "target_year", "is_active", "updated_at"},
		ConflictKeys: []string{"goal_id"},
	}, rows)
	return eris.Wrap(err, "postgres: upsert goals")
}

// helpers

func scanTAMAccounts(rows pgx.Rows) ([]model.TAMAccount, error) {
	var accounts []model.TAMAccount
	for rows.Next() {
		var a model.TAMAccount
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.Website, &a.Vertical, &a.FitTier,
			&a.EstimatedDealValue, &a.CompanySummary, &a.Status, &a.AccountPlanID,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tam account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: iterate tam accounts")
}

// buildUpdate renders a SET clause for the whitelisted columns plus an
// updated_at touch. The id parameter is always $1.
func buildUpdate(fields map[string]any, id string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, eris.New("store: update: no fields specified")
	}

	setClause := ""
	args := []any{id}
	argIdx := 2
	for _, col := range orderedColumns(fields) {
		if !updatableTAMColumns[col] {
			return "", nil, eris.Errorf("store: update: column not updatable: %s", col)
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", col, argIdx)
		args = append(args, fields[col])
		argIdx++
	}
	setClause += fmt.Sprintf(", updated_at = $%d", argIdx)
	args = append(args, time.Now().UTC())
	return setClause, args, nil
}
