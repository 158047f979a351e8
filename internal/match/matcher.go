package match

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scout/internal/model"
)

// CollisionPolicy decides what happens when two distinct display names
// normalize to the same match key.
type CollisionPolicy string

const (
	// PolicyFirstMatchWins silently merges colliding names; the
	// first-seen casing wins. This mirrors the historical behavior.
	PolicyFirstMatchWins CollisionPolicy = "first_match_wins"
	// PolicyStrictUnique rejects the whole batch when names that are
	// not the same up to case and whitespace collide after
	// normalization.
	PolicyStrictUnique CollisionPolicy = "strict_unique"
)

// ErrKeyCollision is returned under PolicyStrictUnique when two
// different display names share a match key.
var ErrKeyCollision = eris.New("match: distinct names collide after normalization")

// Options configures a match run.
type Options struct {
	CollisionPolicy CollisionPolicy
}

// Result is the matcher output for one batch: per-record change verdicts
// sorted new → modified → unchanged, plus classification counts.
type Result struct {
	Changes []model.ChangeRecord `json:"changes"`
	Summary model.ChangeSummary  `json:"summary"`
}

// Match classifies each import record against the existing-account
// snapshot keyed by Key(company_name). It is a pure function: neither
// records nor existing are mutated.
//
// Duplicate records within the batch that normalize to the same key are
// folded into the first occurrence rather than matched against stale
// snapshot state, so a batch can never yield two changes for one key.
func Match(records []model.ImportRecord, existing map[string]model.TAMAccount, opts Options) (*Result, error) {
	policy := opts.CollisionPolicy
	if policy == "" {
		policy = PolicyFirstMatchWins
	}

	// seen maps match key → index into changes for in-batch dedup.
	seen := make(map[string]int, len(records))
	display := make(map[string]string, len(records))
	changes := make([]model.ChangeRecord, 0, len(records))

	for _, rec := range records {
		key := Key(rec.CompanyName)

		if key == "" {
			// Unmatchable name. Classified new and left for the
			// reconciler to reject per record rather than silently
			// inventing a placeholder.
			changes = append(changes, model.ChangeRecord{
				ChangeType:  model.ChangeNew,
				CompanyName: rec.CompanyName,
				Proposed:    rec,
			})
			continue
		}

		if policy == PolicyStrictUnique {
			dk := displayKey(rec.CompanyName)
			if prev, ok := display[key]; ok && prev != dk {
				return nil, eris.Wrapf(ErrKeyCollision, "match: %q vs earlier %q", rec.CompanyName, prev)
			}
			if cur, ok := existing[key]; ok && displayKey(cur.CompanyName) != dk {
				return nil, eris.Wrapf(ErrKeyCollision, "match: %q vs existing %q", rec.CompanyName, cur.CompanyName)
			}
			display[key] = dk
		}

		if idx, ok := seen[key]; ok {
			// Duplicate in batch: fold into the first occurrence's
			// provisional record. First-seen casing wins.
			changes[idx].Proposed.Merge(rec)
			if changes[idx].ChangeType != model.ChangeNew {
				changes[idx].Diffs = diffFields(changes[idx].Proposed, *changes[idx].Current)
				if len(changes[idx].Diffs) > 0 {
					changes[idx].ChangeType = model.ChangeModified
				} else {
					changes[idx].ChangeType = model.ChangeUnchanged
				}
			}
			continue
		}

		cur, ok := existing[key]
		if !ok {
			seen[key] = len(changes)
			changes = append(changes, model.ChangeRecord{
				ChangeType:  model.ChangeNew,
				CompanyName: rec.CompanyName,
				Proposed:    rec,
			})
			continue
		}

		curCopy := cur
		change := model.ChangeRecord{
			CompanyName: rec.CompanyName,
			TargetID:    cur.ID,
			Proposed:    rec,
			Current:     &curCopy,
			Diffs:       diffFields(rec, cur),
		}
		if len(change.Diffs) > 0 {
			change.ChangeType = model.ChangeModified
		} else {
			change.ChangeType = model.ChangeUnchanged
		}
		seen[key] = len(changes)
		changes = append(changes, change)
	}

	sortChanges(changes)

	summary := model.ChangeSummary{Total: len(changes)}
	for _, c := range changes {
		switch c.ChangeType {
		case model.ChangeNew:
			summary.New++
		case model.ChangeModified:
			summary.Modified++
		case model.ChangeUnchanged:
			summary.Unchanged++
		}
	}

	return &Result{Changes: changes, Summary: summary}, nil
}

// SnapshotIndex builds the match-key lookup for an existing-account
// snapshot. Later duplicates are ignored: the first row wins, matching
// first-seen semantics on the import side.
func SnapshotIndex(accounts []model.TAMAccount) map[string]model.TAMAccount {
	idx := make(map[string]model.TAMAccount, len(accounts))
	for _, a := range accounts {
		k := Key(a.CompanyName)
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = a
		}
	}
	return idx
}

// diffFields computes the field-level diff between an incoming record
// and the matched account. A present incoming value overwrites a
// differing existing one; an absent incoming value never clears an
// existing one. Website and deal value are only flagged when they fill a
// gap, matching the import preview contract.
func diffFields(rec model.ImportRecord, cur model.TAMAccount) []model.FieldDiff {
	var diffs []model.FieldDiff

	if rec.Vertical != "" && rec.Vertical != cur.Vertical {
		diffs = append(diffs, model.FieldDiff{
			Field: "vertical",
			Old:   cur.Vertical,
			New:   rec.Vertical,
			Label: fmt.Sprintf("Vertical: %s → %s", orNone(cur.Vertical), rec.Vertical),
		})
	}
	if rec.Website != "" && cur.Website == "" {
		diffs = append(diffs, model.FieldDiff{
			Field: "website",
			New:   rec.Website,
			Label: fmt.Sprintf("Website: Added %s", rec.Website),
		})
	}
	if rec.FitTier != "" && rec.FitTier != cur.FitTier {
		diffs = append(diffs, model.FieldDiff{
			Field: "fit_tier",
			Old:   cur.FitTier,
			New:   rec.FitTier,
			Label: fmt.Sprintf("Tier: %s → %s", orNone(cur.FitTier), rec.FitTier),
		})
	}
	if rec.EstimatedDealValue != nil && cur.EstimatedDealValue == nil {
		diffs = append(diffs, model.FieldDiff{
			Field: "estimated_deal_value",
			New:   fmt.Sprintf("%d", *rec.EstimatedDealValue),
			Label: fmt.Sprintf("Value: Added $%d", *rec.EstimatedDealValue),
		})
	}

	return diffs
}

var changeOrder = map[model.ChangeType]int{
	model.ChangeNew:       0,
	model.ChangeModified:  1,
	model.ChangeUnchanged: 2,
}

func sortChanges(changes []model.ChangeRecord) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changeOrder[changes[i].ChangeType] < changeOrder[changes[j].ChangeType]
	})
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
