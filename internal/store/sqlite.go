package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS account_plans (
	account_plan_id TEXT PRIMARY KEY,
	account_name    TEXT NOT NULL,
	account_type    TEXT NOT NULL DEFAULT 'prospect',
	vertical        TEXT NOT NULL DEFAULT '',
	nps_score       REAL,
	csat_score      REAL,
	usage_pct       REAL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tam_accounts (
	tam_account_id       TEXT PRIMARY KEY,
	company_name         TEXT NOT NULL,
	website              TEXT NOT NULL DEFAULT '',
	vertical             TEXT NOT NULL DEFAULT '',
	fit_tier             TEXT NOT NULL DEFAULT '',
	estimated_deal_value INTEGER,
	company_summary      TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'Prospecting',
	account_plan_id      TEXT REFERENCES account_plans(account_plan_id),
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tam_accounts_status ON tam_accounts(status);
CREATE INDEX IF NOT EXISTS idx_tam_accounts_vertical ON tam_accounts(vertical);

CREATE TABLE IF NOT EXISTS account_health_scores (
	account_plan_id TEXT PRIMARY KEY REFERENCES account_plans(account_plan_id),
	profile         TEXT NOT NULL,
	total_score     INTEGER NOT NULL,
	health_band     TEXT NOT NULL,
	components      TEXT NOT NULL,
	signal_summary  TEXT NOT NULL,
	computed_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	goal_id        TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	goal_type      TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	vertical       TEXT NOT NULL DEFAULT '',
	target_value   REAL NOT NULL DEFAULT 0,
	current_value  REAL NOT NULL DEFAULT 0,
	parent_goal_id TEXT REFERENCES goals(goal_id),
	target_year    INTEGER NOT NULL DEFAULT 0,
	is_active      INTEGER NOT NULL DEFAULT 1,
	updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_goals_parent ON goals(parent_goal_id);

CREATE TABLE IF NOT EXISTS risks (
	risk_id         TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	severity        TEXT NOT NULL DEFAULT 'medium',
	status          TEXT NOT NULL DEFAULT 'open',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pursuits (
	pursuit_id      TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	name            TEXT NOT NULL DEFAULT '',
	stage           TEXT NOT NULL DEFAULT 'discovery',
	stage_30d_ago   TEXT,
	estimated_value INTEGER,
	status          TEXT NOT NULL DEFAULT 'open',
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS stakeholders (
	stakeholder_id  TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	sentiment       TEXT NOT NULL DEFAULT '',
	is_placeholder  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scout_themes (
	theme_id        TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	status          TEXT NOT NULL DEFAULT 'active',
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS action_items (
	action_id       TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	status          TEXT NOT NULL DEFAULT 'open',
	completed_at    DATETIME
);

CREATE TABLE IF NOT EXISTS account_signals (
	signal_id       TEXT PRIMARY KEY,
	account_plan_id TEXT NOT NULL REFERENCES account_plans(account_plan_id),
	kind            TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for test seeding.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) ListTAMAccounts(ctx context.Context) ([]model.TAMAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tamAccountColumns+` FROM tam_accounts ORDER BY company_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tam accounts")
	}
	defer rows.Close()
	return scanTAMAccountRows(rows)
}

func (s *SQLiteStore) QueryTAMAccounts(ctx context.Context, filter TAMFilter) ([]model.TAMAccount, error) {
	query := `SELECT ` + tamAccountColumns + ` FROM tam_accounts WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Vertical != "" {
		query += ` AND vertical = ?`
		args = append(args, filter.Vertical)
	}
	query += ` ORDER BY company_name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query tam accounts")
	}
	defer rows.Close()
	return scanTAMAccountRows(rows)
}

func (s *SQLiteStore) GetTAMAccount(ctx context.Context, id string) (*model.TAMAccount, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tamAccountColumns+` FROM tam_accounts WHERE tam_account_id = ?`,
		id,
	)

	var a model.TAMAccount
	err := row.Scan(&a.ID, &a.CompanyName, &a.Website, &a.Vertical, &a.FitTier,
		&a.EstimatedDealValue, &a.CompanySummary, &a.Status, &a.AccountPlanID,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get tam account %s", id)
	}
	return &a, nil
}

func (s *SQLiteStore) InsertTAMAccounts(ctx context.Context, accounts []model.TAMAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert tam accounts")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tam_accounts (`+tamAccountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert tam accounts")
	}
	defer stmt.Close()

	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx, a.ID, a.CompanyName, a.Website, a.Vertical,
			a.FitTier, a.EstimatedDealValue, a.CompanySummary, string(a.Status),
			a.AccountPlanID, a.CreatedAt, a.UpdatedAt); err != nil {
			return eris.Wrapf(err, "sqlite: insert tam account %s", a.CompanyName)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit insert tam accounts")
}

func (s *SQLiteStore) UpdateTAMAccount(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return eris.New("store: update: no fields specified")
	}

	setClause := ""
	var args []any
	for _, col := range orderedColumns(fields) {
		if !updatableTAMColumns[col] {
			return eris.Errorf("store: update: column not updatable: %s", col)
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = ?", col)
		args = append(args, fields[col])
	}
	setClause += ", updated_at = ?"
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE tam_accounts SET `+setClause+` WHERE tam_account_id = ?`,
		args...,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update tam account %s", id)
	}
	return checkRowsAffected(res, "tam account", id)
}

func (s *SQLiteStore) ListAccountPlans(ctx context.Context) ([]model.AccountPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at
		 FROM account_plans ORDER BY account_name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list account plans")
	}
	defer rows.Close()

	var plans []model.AccountPlan
	for rows.Next() {
		var p model.AccountPlan
		if err := rows.Scan(&p.ID, &p.AccountName, &p.AccountType, &p.Vertical,
			&p.NPSScore, &p.CSATScore, &p.UsagePct, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan account plan")
		}
		plans = append(plans, p)
	}
	return plans, eris.Wrap(rows.Err(), "sqlite: list account plans iterate")
}

func (s *SQLiteStore) InsertAccountPlans(ctx context.Context, plans []model.AccountPlan) error {
	if len(plans) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert account plans")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO account_plans (account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert account plans")
	}
	defer stmt.Close()

	for _, p := range plans {
		if _, err := stmt.ExecContext(ctx, p.ID, p.AccountName, string(p.AccountType),
			p.Vertical, p.NPSScore, p.CSATScore, p.UsagePct, p.CreatedAt, p.UpdatedAt); err != nil {
			return eris.Wrapf(err, "sqlite: insert account plan %s", p.AccountName)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit insert account plans")
}

func (s *SQLiteStore) GetAccountPlan(ctx context.Context, id string) (*model.AccountPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_plan_id, account_name, account_type, vertical, nps_score, csat_score, usage_pct, created_at, updated_at
		 FROM account_plans WHERE account_plan_id = ?`,
		id,
	)

	var p model.AccountPlan
	err := row.Scan(&p.ID, &p.AccountName, &p.AccountType, &p.Vertical,
		&p.NPSScore, &p.CSATScore, &p.UsagePct, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get account plan %s", id)
	}
	return &p, nil
}

func (s *SQLiteStore) ListCompletedActions(ctx context.Context, accountPlanID string, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT completed_at FROM action_items
		 WHERE account_plan_id = ? AND status = 'completed' AND completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT ?`,
		accountPlanID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list completed actions")
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan completed action")
		}
		times = append(times, at)
	}
	return times, eris.Wrap(rows.Err(), "sqlite: list completed actions iterate")
}

func (s *SQLiteStore) ListOpenRisks(ctx context.Context, accountPlanID string) ([]model.Risk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT risk_id, account_plan_id, severity, status, created_at FROM risks
		 WHERE account_plan_id = ? AND status = 'open'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list open risks")
	}
	defer rows.Close()

	var risks []model.Risk
	for rows.Next() {
		var r model.Risk
		if err := rows.Scan(&r.ID, &r.AccountPlanID, &r.Severity, &r.Status, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan risk")
		}
		risks = append(risks, r)
	}
	return risks, eris.Wrap(rows.Err(), "sqlite: list open risks iterate")
}

func (s *SQLiteStore) ListOpenPursuits(ctx context.Context, accountPlanID string) ([]model.Pursuit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pursuit_id, account_plan_id, name, stage, stage_30d_ago, estimated_value, updated_at FROM pursuits
		 WHERE account_plan_id = ? AND status = 'open'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list open pursuits")
	}
	defer rows.Close()

	var pursuits []model.Pursuit
	for rows.Next() {
		var p model.Pursuit
		if err := rows.Scan(&p.ID, &p.AccountPlanID, &p.Name, &p.Stage,
			&p.StagePrior, &p.EstimatedValue, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pursuit")
		}
		pursuits = append(pursuits, p)
	}
	return pursuits, eris.Wrap(rows.Err(), "sqlite: list open pursuits iterate")
}

func (s *SQLiteStore) ListStakeholders(ctx context.Context, accountPlanID string) ([]model.Stakeholder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stakeholder_id, account_plan_id, sentiment, is_placeholder FROM stakeholders
		 WHERE account_plan_id = ?`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stakeholders")
	}
	defer rows.Close()

	var stakeholders []model.Stakeholder
	for rows.Next() {
		var st model.Stakeholder
		if err := rows.Scan(&st.ID, &st.AccountPlanID, &st.Sentiment, &st.IsPlaceholder); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stakeholder")
		}
		stakeholders = append(stakeholders, st)
	}
	return stakeholders, eris.Wrap(rows.Err(), "sqlite: list stakeholders iterate")
}

func (s *SQLiteStore) ListActiveThemes(ctx context.Context, accountPlanID string) ([]model.Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT theme_id, account_plan_id, status, updated_at FROM scout_themes
		 WHERE account_plan_id = ? AND status = 'active'`,
		accountPlanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list active themes")
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		var t model.Theme
		if err := rows.Scan(&t.ID, &t.AccountPlanID, &t.Status, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan theme")
		}
		themes = append(themes, t)
	}
	return themes, eris.Wrap(rows.Err(), "sqlite: list active themes iterate")
}

func (s *SQLiteStore) CountRecentSignals(ctx context.Context, accountPlanID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM account_signals WHERE account_plan_id = ? AND created_at >= ?`,
		accountPlanID, since,
	).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count recent signals")
}

func (s *SQLiteStore) UpsertHealthSnapshot(ctx context.Context, snap *model.HealthSnapshot) error {
	componentsJSON, err := json.Marshal(snap.Components)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal components")
	}
	summaryJSON, err := json.Marshal(snap.Signals)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal signal summary")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO account_health_scores (account_plan_id, profile, total_score, health_band, components, signal_summary, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (account_plan_id) DO UPDATE SET
		   profile = excluded.profile, total_score = excluded.total_score, health_band = excluded.health_band,
		   components = excluded.components, signal_summary = excluded.signal_summary, computed_at = excluded.computed_at`,
		snap.AccountPlanID, string(snap.Profile), snap.Total, string(snap.Band),
		string(componentsJSON), string(summaryJSON), snap.ComputedAt,
	)
	return eris.Wrap(err, "sqlite: upsert health snapshot")
}

func (s *SQLiteStore) GetHealthSnapshot(ctx context.Context, accountPlanID string) (*model.HealthSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_plan_id, profile, total_score, health_band, components, signal_summary, computed_at
		 FROM account_health_scores WHERE account_plan_id = ?`,
		accountPlanID,
	)

	var snap model.HealthSnapshot
	var componentsJSON, summaryJSON string
	err := row.Scan(&snap.AccountPlanID, &snap.Profile, &snap.Total, &snap.Band,
		&componentsJSON, &summaryJSON, &snap.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get health snapshot %s", accountPlanID)
	}

	if err := json.Unmarshal([]byte(componentsJSON), &snap.Components); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal components")
	}
	if err := json.Unmarshal([]byte(summaryJSON), &snap.Signals); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal signal summary")
	}
	return &snap, nil
}

func (s *SQLiteStore) ListGoals(ctx context.Context, filter GoalFilter) ([]model.GoalNode, error) {
	query := `SELECT goal_id, name, goal_type, category, vertical, target_value, current_value, parent_goal_id, target_year, is_active, updated_at
	          FROM goals WHERE 1=1`
	var args []any

	if filter.TargetYear > 0 {
		query += ` AND target_year = ?`
		args = append(args, filter.TargetYear)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list goals")
	}
	defer rows.Close()

	var goals []model.GoalNode
	for rows.Next() {
		var g model.GoalNode
		if err := rows.Scan(&g.ID, &g.Name, &g.GoalType, &g.Category, &g.Vertical,
			&g.TargetValue, &g.CurrentValue, &g.ParentID, &g.TargetYear,
			&g.IsActive, &g.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan goal")
		}
		goals = append(goals, g)
	}
	return goals, eris.Wrap(rows.Err(), "sqlite: list goals iterate")
}

func (s *SQLiteStore) UpsertGoals(ctx context.Context, goals []model.GoalNode) error {
	if len(goals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert goals")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO goals (goal_id, name, goal_type, category, vertical, target_value, current_value, parent_goal_id, target_year, is_active, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (goal_id) DO UPDATE SET
		   name = excluded.name, goal_type = excluded.goal_type, category = excluded.category,
		   vertical = excluded.vertical, target_value = excluded.target_value, current_value = excluded.current_value,
		   parent_goal_id = excluded.parent_goal_id, target_year = excluded.target_year,
		   is_active = excluded.is_active, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert goals")
	}
	defer stmt.Close()

	for _, g := range goals {
		if _, err := stmt.ExecContext(ctx, g.ID, g.Name, g.GoalType, g.Category,
			g.Vertical, g.TargetValue, g.CurrentValue, g.ParentID, g.TargetYear,
			g.IsActive, g.UpdatedAt); err != nil {
			return eris.Wrapf(err, "sqlite: upsert goal %s", g.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert goals")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func scanTAMAccountRows(rows *sql.Rows) ([]model.TAMAccount, error) {
	var accounts []model.TAMAccount
	for rows.Next() {
		var a model.TAMAccount
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.Website, &a.Vertical, &a.FitTier,
			&a.EstimatedDealValue, &a.CompanySummary, &a.Status, &a.AccountPlanID,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tam account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: iterate tam accounts")
}
