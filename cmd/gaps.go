package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/gap"
	"github.com/sells-group/scout/internal/model"
	"github.com/sells-group/scout/internal/store"
)

var (
	gapsYear     int
	gapsCategory string
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Analyze goal gaps against the addressable account pool",
	Long:  "Computes the remaining gap for each leaf goal and sizes the addressable TAM pool that could close it.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("health"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		goals, err := st.ListGoals(ctx, store.GoalFilter{
			TargetYear: gapsYear,
			Category:   gapsCategory,
			ActiveOnly: true,
		})
		if err != nil {
			return eris.Wrap(err, "list goals")
		}
		if len(goals) == 0 {
			zap.L().Info("no active goals match the filter",
				zap.Int("year", gapsYear),
				zap.String("category", gapsCategory),
			)
			return nil
		}

		// Disqualified accounts can never close a gap.
		pool, err := st.ListTAMAccounts(ctx)
		if err != nil {
			return eris.Wrap(err, "list accounts")
		}
		addressable := pool[:0:0]
		for _, acct := range pool {
			if acct.Status != model.TAMStatusDisqualified {
				addressable = append(addressable, acct)
			}
		}

		report := gap.Aggregate(goals, addressable)

		for _, row := range report.Goals {
			zap.L().Info("goal gap",
				zap.String("goal", row.Goal.Name),
				zap.String("category", row.Goal.Category),
				zap.String("vertical", row.Goal.Vertical),
				zap.Float64("target", row.Goal.TargetValue),
				zap.Float64("current", row.Goal.CurrentValue),
				zap.Float64("gap", row.Gap),
				zap.Int("progress_pct", row.ProgressPct),
				zap.String("status", string(row.Status)),
				zap.Int("addressable_accounts", row.AddressableCount),
				zap.Float64("addressable_value", row.AddressableValue),
			)
		}
		zap.L().Info("gap analysis complete",
			zap.Int("goals", len(report.Goals)),
			zap.Float64("total_gap", report.TotalGap),
			zap.Float64("total_addressable_value", report.TotalAddressableValue),
		)
		return nil
	},
}

func init() {
	gapsCmd.Flags().IntVar(&gapsYear, "year", 0, "filter goals by target year")
	gapsCmd.Flags().StringVar(&gapsCategory, "category", "", "filter goals by category")
	rootCmd.AddCommand(gapsCmd)
}
