package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/health"
	"github.com/sells-group/scout/internal/model"
)

var healthAll bool

var healthCmd = &cobra.Command{
	Use:   "health [account-plan-id]",
	Short: "Recompute account health scores",
	Long:  "Gathers engagement, pipeline, risk, and survey signals for an account plan, scores it on its outbound or inbound profile, and stores the snapshot.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("health"); err != nil {
			return err
		}
		if !healthAll && len(args) == 0 {
			return eris.New("an account plan ID or --all is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine := health.NewEngine(st)

		if !healthAll {
			snap, err := engine.Snapshot(ctx, args[0])
			if err != nil {
				return eris.Wrapf(err, "score account %s", args[0])
			}
			logSnapshot(snap.AccountPlanID, snap)
			return nil
		}

		plans, err := st.ListAccountPlans(ctx)
		if err != nil {
			return eris.Wrap(err, "list account plans")
		}

		var failed int
		for _, plan := range plans {
			snap, err := engine.Snapshot(ctx, plan.ID)
			if err != nil {
				failed++
				zap.L().Error("health recompute failed",
					zap.String("account_plan_id", plan.ID),
					zap.String("account", plan.AccountName),
					zap.Error(err),
				)
				continue
			}
			logSnapshot(plan.AccountName, snap)
		}

		zap.L().Info("health recompute complete",
			zap.Int("scored", len(plans)-failed),
			zap.Int("failed", failed),
		)
		if failed > 0 {
			return eris.Errorf("%d of %d accounts failed to score", failed, len(plans))
		}
		return nil
	},
}

func logSnapshot(label string, snap *model.HealthSnapshot) {
	fields := []zap.Field{
		zap.String("account", label),
		zap.String("profile", string(snap.Profile)),
		zap.Int("score", snap.Total),
		zap.String("band", string(snap.Band)),
	}
	for _, c := range snap.Components {
		fields = append(fields, zap.String(c.Name, fmt.Sprintf("%d/%d %s", c.Score, c.Max, c.Explanation)))
	}
	zap.L().Info("account health", fields...)
}

func init() {
	healthCmd.Flags().BoolVar(&healthAll, "all", false, "recompute every account plan")
	rootCmd.AddCommand(healthCmd)
}
