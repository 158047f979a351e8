// Package reconcile turns matcher verdicts into persisted state. Preview
// classifies an import batch against the live snapshot without writing;
// Apply executes the accepted changes in batches, accumulating per-record
// and per-batch errors so one bad row never aborts the run.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/match"
	"github.com/sells-group/scout/internal/model"
)

// ErrSnapshotUnavailable marks a run that failed before any writes
// because the existing-account snapshot could not be loaded.
var ErrSnapshotUnavailable = eris.New("reconcile: existing account snapshot unavailable")

// DefaultBatchSize is the insert batch size when Options leaves it unset.
const DefaultBatchSize = 50

// Store is the persistence slice the reconciler needs.
type Store interface {
	ListTAMAccounts(ctx context.Context) ([]model.TAMAccount, error)
	InsertTAMAccounts(ctx context.Context, accounts []model.TAMAccount) error
	UpdateTAMAccount(ctx context.Context, id string, fields map[string]any) error
	ListAccountPlans(ctx context.Context) ([]model.AccountPlan, error)
	InsertAccountPlans(ctx context.Context, plans []model.AccountPlan) error
}

// Options configures an Apply run.
type Options struct {
	BatchSize int
}

// Outcome reports what an Apply run actually did. Errors holds one entry
// per skipped record or failed batch; a non-empty Errors with a nil
// returned error means a partial apply.
type Outcome struct {
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	LinkedToParent int      `json:"linked_to_parent"`
	Errors         []string `json:"errors,omitempty"`
}

// Reconciler previews and applies import batches against a store.
type Reconciler struct {
	store  Store
	policy match.CollisionPolicy
	now    func() time.Time
}

func New(store Store, policy match.CollisionPolicy) *Reconciler {
	return &Reconciler{store: store, policy: policy, now: time.Now}
}

// Preview classifies records against the current snapshot. Read-only:
// repeated previews of the same batch return identical results.
func (r *Reconciler) Preview(ctx context.Context, records []model.ImportRecord) (*match.Result, error) {
	accounts, err := r.store.ListTAMAccounts(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrSnapshotUnavailable, "list accounts: %v", err)
	}

	result, err := match.Match(records, match.SnapshotIndex(accounts), match.Options{CollisionPolicy: r.policy})
	if err != nil {
		return nil, eris.Wrap(err, "reconcile: classify batch")
	}
	return result, nil
}

// Apply persists a set of accepted changes. New accounts are inserted in
// batches of opts.BatchSize after their parent account plans exist;
// modified accounts are updated one by one from their field diffs.
// Unchanged records are skipped. Failures are collected in the outcome
// and the run continues.
func (r *Reconciler) Apply(ctx context.Context, changes []model.ChangeRecord, opts Options) (*Outcome, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	outcome := &Outcome{}

	var inserts []model.ChangeRecord
	var updates []model.ChangeRecord
	for i, ch := range changes {
		switch ch.ChangeType {
		case model.ChangeNew:
			if match.Key(ch.CompanyName) == "" {
				outcome.Errors = append(outcome.Errors, fmt.Sprintf("record %d: empty company name", i))
				continue
			}
			inserts = append(inserts, ch)
		case model.ChangeModified:
			updates = append(updates, ch)
		}
	}

	planIDs, err := r.ensureParentPlans(ctx, inserts, batchSize, outcome)
	if err != nil {
		return nil, err
	}

	r.insertAccounts(ctx, inserts, planIDs, batchSize, outcome)
	r.updateAccounts(ctx, updates, outcome)

	zap.L().Info("import applied",
		zap.Int("created", outcome.Created),
		zap.Int("updated", outcome.Updated),
		zap.Int("linked_to_parent", outcome.LinkedToParent),
		zap.Int("errors", len(outcome.Errors)))
	return outcome, nil
}

// ensureParentPlans creates account plans for new accounts that have no
// existing plan, so every inserted TAM row can link to a parent. Returns
// the match-key → plan ID index covering existing and created plans.
func (r *Reconciler) ensureParentPlans(ctx context.Context, inserts []model.ChangeRecord, batchSize int, outcome *Outcome) (map[string]string, error) {
	existing, err := r.store.ListAccountPlans(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrSnapshotUnavailable, "list account plans: %v", err)
	}

	planIDs := make(map[string]string, len(existing))
	for _, p := range existing {
		key := match.Key(p.AccountName)
		if _, ok := planIDs[key]; !ok {
			planIDs[key] = p.ID
		}
	}

	var missing []model.AccountPlan
	for _, ch := range inserts {
		key := match.Key(ch.CompanyName)
		if _, ok := planIDs[key]; ok {
			continue
		}
		plan := model.AccountPlan{
			ID:          uuid.NewString(),
			AccountName: ch.CompanyName,
			AccountType: model.AccountTypeProspect,
			Vertical:    ch.Proposed.Vertical,
			CreatedAt:   r.now().UTC(),
			UpdatedAt:   r.now().UTC(),
		}
		missing = append(missing, plan)
		planIDs[key] = plan.ID
	}

	for i, batch := range chunk(missing, batchSize) {
		if err := r.store.InsertAccountPlans(ctx, batch); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("account plan batch %d: %v", i+1, err))
			for _, p := range batch {
				delete(planIDs, match.Key(p.AccountName))
			}
		}
	}
	return planIDs, nil
}

func (r *Reconciler) insertAccounts(ctx context.Context, inserts []model.ChangeRecord, planIDs map[string]string, batchSize int, outcome *Outcome) {
	accounts := make([]model.TAMAccount, 0, len(inserts))
	for _, ch := range inserts {
		acct := model.TAMAccount{
			ID:                 uuid.NewString(),
			CompanyName:        ch.CompanyName,
			Website:            ch.Proposed.Website,
			Vertical:           ch.Proposed.Vertical,
			FitTier:            ch.Proposed.FitTier,
			EstimatedDealValue: ch.Proposed.EstimatedDealValue,
			CompanySummary:     ch.Proposed.CompanySummary,
			Status:             model.TAMStatusProspecting,
			CreatedAt:          r.now().UTC(),
			UpdatedAt:          r.now().UTC(),
		}
		if id, ok := planIDs[match.Key(ch.CompanyName)]; ok {
			acct.AccountPlanID = &id
		}
		accounts = append(accounts, acct)
	}

	for i, batch := range chunk(accounts, batchSize) {
		if err := r.store.InsertTAMAccounts(ctx, batch); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("insert batch %d: %v", i+1, err))
			continue
		}
		outcome.Created += len(batch)
		for _, a := range batch {
			if a.AccountPlanID != nil {
				outcome.LinkedToParent++
			}
		}
	}
}

func (r *Reconciler) updateAccounts(ctx context.Context, updates []model.ChangeRecord, outcome *Outcome) {
	for _, ch := range updates {
		fields := updateFields(ch)
		if len(fields) == 0 {
			continue
		}
		if err := r.store.UpdateTAMAccount(ctx, ch.TargetID, fields); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("update %s: %v", ch.CompanyName, err))
			continue
		}
		outcome.Updated++
	}
}

// updateFields maps a modified record's diffs onto column assignments,
// taking typed values from the proposed record rather than the rendered
// diff strings.
func updateFields(ch model.ChangeRecord) map[string]any {
	fields := make(map[string]any, len(ch.Diffs)+1)
	for _, d := range ch.Diffs {
		switch d.Field {
		case "vertical":
			fields["vertical"] = ch.Proposed.Vertical
		case "website":
			fields["website"] = ch.Proposed.Website
		case "fit_tier":
			fields["fit_tier"] = ch.Proposed.FitTier
		case "estimated_deal_value":
			fields["estimated_deal_value"] = ch.Proposed.EstimatedDealValue
		}
	}
	return fields
}

func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
