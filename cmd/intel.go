package main

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/intelligence"
	"github.com/sells-group/scout/internal/model"
	"github.com/sells-group/scout/internal/store"
	"github.com/sells-group/scout/pkg/anthropic"
)

var (
	intelLevel     string
	intelAccountID string
	intelBulk      bool
	intelApply     bool
	intelCampaign  string
	intelObjective string
	intelSeller    string
	intelOffering  string
)

var intelCmd = &cobra.Command{
	Use:   "intel",
	Short: "Run LLM account research",
	Long:  "Researches TAM accounts at one of four levels (tam_screening, account_building, opportunity_mapping, ongoing_monitoring) and parses the structured findings.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("intel"); err != nil {
			return err
		}
		level := intelligence.Level(intelLevel)
		if !intelligence.ValidLevel(level) {
			return eris.Errorf("unknown research level %q", intelLevel)
		}
		if !intelBulk && intelAccountID == "" {
			return eris.New("a TAM account ID or --bulk is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := intelligence.NewService(anthropic.NewClient(cfg.Anthropic.Key), intelligence.ServiceConfig{
			Model:             cfg.Anthropic.Model,
			MaxTokens:         cfg.Anthropic.MaxTokens,
			RequestsPerMinute: cfg.Anthropic.RequestsPerMinute,
		})

		if intelBulk {
			return runBulkIntel(cmd, st, svc, level)
		}

		acct, err := st.GetTAMAccount(ctx, intelAccountID)
		if err != nil {
			return eris.Wrap(err, "load account")
		}
		if acct == nil {
			return eris.Errorf("TAM account %s not found", intelAccountID)
		}

		res, err := svc.Research(ctx, researchRequest(level, *acct))
		if err != nil {
			return eris.Wrapf(err, "research %s", acct.CompanyName)
		}

		if err := reportIntel(ctx, st, *acct, res); err != nil {
			return err
		}
		return nil
	},
}

func runBulkIntel(cmd *cobra.Command, st store.Store, svc *intelligence.Service, level intelligence.Level) error {
	ctx := cmd.Context()

	accounts, err := st.QueryTAMAccounts(ctx, store.TAMFilter{Status: model.TAMStatusProspecting})
	if err != nil {
		return eris.Wrap(err, "list prospecting accounts")
	}
	if len(accounts) == 0 {
		zap.L().Info("no prospecting accounts to research")
		return nil
	}

	reqs := make([]intelligence.Request, len(accounts))
	for i, acct := range accounts {
		reqs[i] = researchRequest(level, acct)
	}

	outcomes, err := svc.BulkResearch(ctx, reqs)
	if err != nil {
		return eris.Wrap(err, "bulk research")
	}

	var failed int
	for _, out := range outcomes {
		acct := accounts[out.Index]
		if out.Err != nil {
			failed++
			zap.L().Error("research failed",
				zap.String("company", acct.CompanyName),
				zap.Error(out.Err),
			)
			continue
		}
		if err := reportIntel(ctx, st, acct, out.Result); err != nil {
			failed++
			zap.L().Error("apply research failed",
				zap.String("company", acct.CompanyName),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("bulk research complete",
		zap.Int("researched", len(outcomes)-failed),
		zap.Int("failed", failed),
	)
	return nil
}

func researchRequest(level intelligence.Level, acct model.TAMAccount) intelligence.Request {
	return intelligence.Request{
		Level: level,
		Campaign: intelligence.CampaignContext{
			Name:      intelCampaign,
			Objective: intelObjective,
		},
		Seller: intelligence.SellerContext{
			Company:  intelSeller,
			Offering: intelOffering,
		},
		Target: intelligence.TargetCompany{
			Name:     acct.CompanyName,
			Website:  acct.Website,
			Vertical: acct.Vertical,
			Summary:  acct.CompanySummary,
		},
	}
}

// reportIntel logs the parsed findings and, for screening runs with
// --apply, writes the fit verdict back onto the account.
func reportIntel(ctx context.Context, st store.Store, acct model.TAMAccount, res *intelligence.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "encode result")
	}
	zap.L().Info("research findings",
		zap.String("company", acct.CompanyName),
		zap.String("level", string(res.Level)),
		zap.ByteString("findings", body),
	)

	if !intelApply || res.TAMScreening == nil {
		return nil
	}

	fields := map[string]any{
		"fit_tier": res.TAMScreening.FitTier,
		"status":   string(model.TAMStatusResearching),
	}
	if res.TAMScreening.Vertical != "" {
		fields["vertical"] = res.TAMScreening.Vertical
	}
	if res.TAMScreening.EstimatedValue > 0 {
		fields["estimated_deal_value"] = res.TAMScreening.EstimatedValue
	}
	if err := st.UpdateTAMAccount(ctx, acct.ID, fields); err != nil {
		return eris.Wrapf(err, "update account %s", acct.ID)
	}
	zap.L().Info("screening verdict applied",
		zap.String("company", acct.CompanyName),
		zap.String("fit_tier", res.TAMScreening.FitTier),
	)
	return nil
}

func init() {
	intelCmd.Flags().StringVar(&intelLevel, "level", "tam_screening", "research level")
	intelCmd.Flags().StringVar(&intelAccountID, "account", "", "TAM account ID to research")
	intelCmd.Flags().BoolVar(&intelBulk, "bulk", false, "research every prospecting account via the batch API")
	intelCmd.Flags().BoolVar(&intelApply, "apply", false, "write screening verdicts back onto accounts")
	intelCmd.Flags().StringVar(&intelCampaign, "campaign", "", "campaign name for prompt context")
	intelCmd.Flags().StringVar(&intelObjective, "objective", "", "campaign objective for prompt context")
	intelCmd.Flags().StringVar(&intelSeller, "seller", "", "selling company name")
	intelCmd.Flags().StringVar(&intelOffering, "offering", "", "what the seller offers")
	rootCmd.AddCommand(intelCmd)
}
