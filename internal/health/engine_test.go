package health

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scout/internal/model"
)

type fakeStore struct {
	plan         *model.AccountPlan
	actions      []time.Time
	risks        []model.Risk
	pursuits     []model.Pursuit
	stakeholders []model.Stakeholder
	themes       []model.Theme
	signalCount  int

	failRisks bool
	saved     *model.HealthSnapshot
}

func (f *fakeStore) GetAccountPlan(_ context.Context, id string) (*model.AccountPlan, error) {
	if f.plan == nil {
		return nil, eris.Errorf("account plan %s not found", id)
	}
	return f.plan, nil
}

func (f *fakeStore) ListCompletedActions(context.Context, string, int) ([]time.Time, error) {
	return f.actions, nil
}

func (f *fakeStore) ListOpenRisks(context.Context, string) ([]model.Risk, error) {
	if f.failRisks {
		return nil, eris.New("connection reset")
	}
	return f.risks, nil
}

func (f *fakeStore) ListOpenPursuits(context.Context, string) ([]model.Pursuit, error) {
	return f.pursuits, nil
}

func (f *fakeStore) ListStakeholders(context.Context, string) ([]model.Stakeholder, error) {
	return f.stakeholders, nil
}

func (f *fakeStore) ListActiveThemes(context.Context, string) ([]model.Theme, error) {
	return f.themes, nil
}

func (f *fakeStore) CountRecentSignals(context.Context, string, time.Time) (int, error) {
	return f.signalCount, nil
}

func (f *fakeStore) UpsertHealthSnapshot(_ context.Context, snap *model.HealthSnapshot) error {
	f.saved = snap
	return nil
}

func newTestEngine(store *fakeStore, now time.Time) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return now }
	return e
}

func TestSnapshotOutboundHealthy(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	discovery := "discovery"
	store := &fakeStore{
		plan: &model.AccountPlan{ID: "ap-1", AccountName: "Acme", AccountType: model.AccountTypeProspect},
		actions: []time.Time{
			now.Add(-2 * 24 * time.Hour),
			now.Add(-9 * 24 * time.Hour),
			now.Add(-20 * 24 * time.Hour),
		},
		pursuits: []model.Pursuit{
			{ID: "p-1", Stage: "proposal", StagePrior: &discovery, UpdatedAt: now.Add(-24 * time.Hour)},
		},
		stakeholders: []model.Stakeholder{
			{ID: "s-1", Sentiment: model.SentimentChampion},
			{ID: "s-2", Sentiment: model.SentimentSupporter},
			{ID: "s-3", Sentiment: model.SentimentNeutral},
		},
		themes: []model.Theme{
			{ID: "t-1", Status: "active", UpdatedAt: now.Add(-48 * time.Hour)},
			{ID: "t-2", Status: "active", UpdatedAt: now.Add(-72 * time.Hour)},
		},
		signalCount: 3,
	}

	snap, err := newTestEngine(store, now).Snapshot(context.Background(), "ap-1")
	require.NoError(t, err)

	assert.Equal(t, model.ProfileOutbound, snap.Profile)
	assert.GreaterOrEqual(t, snap.Total, 90)
	assert.Equal(t, model.BandHealthy, snap.Band)
	assert.Equal(t, model.SignalSummary{}, snap.Signals, "no warnings on a healthy account")
	require.NotNil(t, store.saved, "snapshot persists")
	assert.Equal(t, snap, store.saved)
}

func TestSnapshotOutboundWarningSignals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		plan: &model.AccountPlan{ID: "ap-2", AccountType: model.AccountTypeProspect},
		pursuits: []model.Pursuit{
			{ID: "p-1", Stage: "qualification", UpdatedAt: now.Add(-20 * 24 * time.Hour)},
			{ID: "p-2", Stage: "discovery", UpdatedAt: now.Add(-24 * time.Hour)},
		},
		stakeholders: []model.Stakeholder{
			{ID: "s-1", Sentiment: model.SentimentSupporter},
			{ID: "s-2", Sentiment: model.SentimentChampion, IsPlaceholder: true},
		},
		themes: []model.Theme{
			{ID: "t-1", Status: "active", UpdatedAt: now.Add(-30 * 24 * time.Hour)},
		},
	}

	snap, err := newTestEngine(store, now).Snapshot(context.Background(), "ap-2")
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Signals.StalledDeals)
	assert.Equal(t, 1, snap.Signals.MissingChampion, "placeholder champion does not count")
	assert.Equal(t, 1, snap.Signals.InactiveThemes)
}

func TestSnapshotInboundCustomer(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	nps := 55.0
	usage := 88.0
	store := &fakeStore{
		plan: &model.AccountPlan{
			ID:          "ap-3",
			AccountType: model.AccountTypeCustomer,
			NPSScore:    &nps,
			UsagePct:    &usage,
		},
		actions: []time.Time{
			now.Add(-3 * 24 * time.Hour),
			now.Add(-8 * 24 * time.Hour),
			now.Add(-15 * 24 * time.Hour),
			now.Add(-22 * 24 * time.Hour),
		},
		risks: []model.Risk{
			{ID: "r-1", Severity: model.RiskCritical, CreatedAt: now.Add(-10 * 24 * time.Hour)},
			{ID: "r-2", Severity: model.RiskHigh, CreatedAt: now.Add(-24 * time.Hour)},
		},
		stakeholders: []model.Stakeholder{
			{ID: "s-1", Sentiment: model.SentimentBlocker},
			{ID: "s-2", Sentiment: model.SentimentSkeptic, IsPlaceholder: true},
		},
	}

	snap, err := newTestEngine(store, now).Snapshot(context.Background(), "ap-3")
	require.NoError(t, err)

	assert.Equal(t, model.ProfileInbound, snap.Profile)
	// Sentiment 40, usage 30, support zeroed by the overdue critical,
	// engagement 10.
	assert.Equal(t, 80, snap.Total)
	assert.Equal(t, model.BandHealthy, snap.Band)

	assert.Equal(t, 1, snap.Signals.EscalationRisks)
	assert.Equal(t, 1, snap.Signals.PatternWarnings)
	assert.Equal(t, 1, snap.Signals.SentimentAlerts, "placeholder skeptic does not count")
}

func TestSnapshotEmptyAccountScoresLowestBand(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		plan: &model.AccountPlan{ID: "ap-4", AccountType: model.AccountTypeProspect},
	}

	snap, err := newTestEngine(store, now).Snapshot(context.Background(), "ap-4")
	require.NoError(t, err, "absent signals are not an error")
	assert.Equal(t, model.BandCritical, snap.Band)
}

func TestSnapshotStoreFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		plan:      &model.AccountPlan{ID: "ap-5", AccountType: model.AccountTypeProspect},
		failRisks: true,
	}

	_, err := newTestEngine(store, now).Snapshot(context.Background(), "ap-5")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataUnavailable))
	assert.Nil(t, store.saved)
}

func TestSnapshotUnknownPlan(t *testing.T) {
	store := &fakeStore{}
	_, err := NewEngine(store).Snapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDataUnavailable))
}
