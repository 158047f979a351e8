package health

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/scout/internal/model"
)

// ErrDataUnavailable marks a snapshot attempt where the backing store
// could not supply the scoring signals. Absent signals are not data
// unavailability; only store failures are.
var ErrDataUnavailable = eris.New("health: scoring signals unavailable")

// Store is the slice of the persistence layer the engine reads signals
// from and writes snapshots to.
type Store interface {
	GetAccountPlan(ctx context.Context, id string) (*model.AccountPlan, error)
	ListCompletedActions(ctx context.Context, accountPlanID string, limit int) ([]time.Time, error)
	ListOpenRisks(ctx context.Context, accountPlanID string) ([]model.Risk, error)
	ListOpenPursuits(ctx context.Context, accountPlanID string) ([]model.Pursuit, error)
	ListStakeholders(ctx context.Context, accountPlanID string) ([]model.Stakeholder, error)
	ListActiveThemes(ctx context.Context, accountPlanID string) ([]model.Theme, error)
	CountRecentSignals(ctx context.Context, accountPlanID string, since time.Time) (int, error)
	UpsertHealthSnapshot(ctx context.Context, snap *model.HealthSnapshot) error
}

const (
	signalWindow  = 30 * 24 * time.Hour
	staleCutoff   = 14 * 24 * time.Hour
	escalationAge = 7 * 24 * time.Hour
	actionLimit   = 50
)

// Engine computes and persists health snapshots from stored signals.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Snapshot recomputes the health score for one account plan from current
// signals, persists it, and returns it. The account's type selects the
// profile: customers score inbound, everything else outbound.
func (e *Engine) Snapshot(ctx context.Context, accountPlanID string) (*model.HealthSnapshot, error) {
	plan, err := e.store.GetAccountPlan(ctx, accountPlanID)
	if err != nil {
		return nil, eris.Wrapf(ErrDataUnavailable, "load account plan %s: %v", accountPlanID, err)
	}

	sig, err := e.gather(ctx, accountPlanID)
	if err != nil {
		return nil, eris.Wrapf(ErrDataUnavailable, "gather signals for %s: %v", accountPlanID, err)
	}

	var score Score
	var summary model.SignalSummary
	if plan.AccountType == model.AccountTypeCustomer {
		score = ComputeInbound(sig.inbound(plan, e.now()))
		summary = sig.inboundSummary()
	} else {
		score = ComputeOutbound(sig.outbound(e.now()))
		summary = sig.outboundSummary(e.now())
	}

	snap := &model.HealthSnapshot{
		AccountPlanID: accountPlanID,
		Profile:       score.Profile,
		Total:         score.Total,
		Band:          score.Band,
		Components:    score.Components,
		Signals:       summary,
		ComputedAt:    e.now().UTC(),
	}
	if err := e.store.UpsertHealthSnapshot(ctx, snap); err != nil {
		return nil, eris.Wrapf(err, "persist health snapshot for %s", accountPlanID)
	}

	zap.L().Info("health snapshot computed",
		zap.String("account_plan_id", accountPlanID),
		zap.String("profile", string(snap.Profile)),
		zap.Int("total", snap.Total),
		zap.String("band", string(snap.Band)))
	return snap, nil
}

// signals holds one account's raw scoring inputs fetched in parallel.
type signals struct {
	actions      []time.Time
	risks        []model.Risk
	pursuits     []model.Pursuit
	stakeholders []model.Stakeholder
	themes       []model.Theme
	signalCount  int
}

func (e *Engine) gather(ctx context.Context, accountPlanID string) (*signals, error) {
	var sig signals
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		sig.actions, err = e.store.ListCompletedActions(ctx, accountPlanID, actionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		sig.risks, err = e.store.ListOpenRisks(ctx, accountPlanID)
		return err
	})
	g.Go(func() error {
		var err error
		sig.pursuits, err = e.store.ListOpenPursuits(ctx, accountPlanID)
		return err
	})
	g.Go(func() error {
		var err error
		sig.stakeholders, err = e.store.ListStakeholders(ctx, accountPlanID)
		return err
	})
	g.Go(func() error {
		var err error
		sig.themes, err = e.store.ListActiveThemes(ctx, accountPlanID)
		return err
	})
	g.Go(func() error {
		var err error
		sig.signalCount, err = e.store.CountRecentSignals(ctx, accountPlanID, e.now().Add(-signalWindow))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sig, nil
}

func (s *signals) outbound(now time.Time) OutboundInputs {
	days, count := contactCadence(s.actions, now)

	movement := 0
	for _, p := range s.pursuits {
		movement += StageMovement(p.StagePrior, p.Stage)
	}

	open, critical := 0, 0
	for _, r := range s.risks {
		open++
		if r.Severity == model.RiskCritical {
			critical++
		}
	}

	return OutboundInputs{
		DaysSinceContact: days,
		ContactCount30d:  count,
		StageMovement:    movement,
		OpenRisks:        open,
		CriticalRisks:    critical,
		ActiveThemes:     len(s.themes),
		Stakeholders:     countMapped(s.stakeholders),
		Signals30d:       s.signalCount,
	}
}

func (s *signals) inbound(plan *model.AccountPlan, now time.Time) InboundInputs {
	days, count := contactCadence(s.actions, now)

	criticalOverdue, highOverdue := 0, 0
	for _, r := range s.risks {
		if now.Sub(r.CreatedAt) < escalationAge {
			continue
		}
		switch r.Severity {
		case model.RiskCritical:
			criticalOverdue++
		case model.RiskHigh:
			highOverdue++
		}
	}

	return InboundInputs{
		NPS:              plan.NPSScore,
		CSAT:             plan.CSATScore,
		UsagePct:         plan.UsagePct,
		CriticalOverdue:  criticalOverdue,
		HighOverdue:      highOverdue,
		DaysSinceContact: days,
		ContactCount30d:  count,
	}
}

func (s *signals) outboundSummary(now time.Time) model.SignalSummary {
	var sum model.SignalSummary
	for _, p := range s.pursuits {
		if now.Sub(p.UpdatedAt) >= staleCutoff {
			sum.StalledDeals++
		}
	}
	if len(s.pursuits) > 0 && !hasChampion(s.stakeholders) {
		sum.MissingChampion = 1
	}
	for _, t := range s.themes {
		if now.Sub(t.UpdatedAt) >= staleCutoff {
			sum.InactiveThemes++
		}
	}
	return sum
}

func (s *signals) inboundSummary() model.SignalSummary {
	var sum model.SignalSummary
	for _, r := range s.risks {
		switch r.Severity {
		case model.RiskCritical:
			sum.EscalationRisks++
		case model.RiskHigh:
			sum.PatternWarnings++
		}
	}
	for _, st := range s.stakeholders {
		if st.IsPlaceholder {
			continue
		}
		if st.Sentiment == model.SentimentSkeptic || st.Sentiment == model.SentimentBlocker {
			sum.SentimentAlerts++
		}
	}
	return sum
}

// contactCadence reduces completed-action timestamps to days since the
// most recent touch and the touch count inside the 30-day window. No
// actions at all reads as a year of silence.
func contactCadence(actions []time.Time, now time.Time) (daysSince, count30d int) {
	daysSince = 365
	cutoff := now.Add(-signalWindow)
	for _, at := range actions {
		if d := int(now.Sub(at).Hours() / 24); d < daysSince && d >= 0 {
			daysSince = d
		}
		if at.After(cutoff) {
			count30d++
		}
	}
	return daysSince, count30d
}

func countMapped(stakeholders []model.Stakeholder) int {
	n := 0
	for _, s := range stakeholders {
		if !s.IsPlaceholder {
			n++
		}
	}
	return n
}

func hasChampion(stakeholders []model.Stakeholder) bool {
	for _, s := range stakeholders {
		if !s.IsPlaceholder && s.Sentiment == model.SentimentChampion {
			return true
		}
	}
	return false
}
