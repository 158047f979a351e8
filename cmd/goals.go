package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/scout/internal/gap"
	"github.com/sells-group/scout/internal/model"
)

var goalsFile string

// goalSpec is one node in the YAML goal tree. Children inherit the
// file's target year.
type goalSpec struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Category string     `yaml:"category"`
	Vertical string     `yaml:"vertical"`
	Target   float64    `yaml:"target"`
	Current  float64    `yaml:"current"`
	Children []goalSpec `yaml:"children"`
}

type goalFile struct {
	Year  int        `yaml:"year"`
	Goals []goalSpec `yaml:"goals"`
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Load the goal tree from a YAML file",
	Long:  "Parses a YAML goal hierarchy and upserts it into the store. Existing goals with matching ids are updated in place.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("health"); err != nil {
			return err
		}

		data, err := os.ReadFile(goalsFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", goalsFile)
		}
		var gf goalFile
		if err := yaml.Unmarshal(data, &gf); err != nil {
			return eris.Wrapf(err, "parse %s", goalsFile)
		}
		if gf.Year == 0 {
			return eris.New("goal file must set a target year")
		}

		nodes, err := flattenGoals(gf.Year, gf.Goals, nil)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return eris.Errorf("%s contains no goals", goalsFile)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.UpsertGoals(ctx, nodes); err != nil {
			return eris.Wrap(err, "upsert goals")
		}

		byParent := make(map[string][]model.GoalNode)
		for _, n := range nodes {
			if n.ParentID != nil {
				byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
			}
		}
		for _, n := range nodes {
			children, ok := byParent[n.ID]
			if !ok {
				continue
			}
			zap.L().Info("parent goal rollup",
				zap.String("goal", n.Name),
				zap.Float64("target", n.TargetValue),
				zap.Int("children", len(children)),
				zap.Float64("remaining_after_children", gap.Remaining(n, children)),
			)
		}
		zap.L().Info("goal tree loaded",
			zap.Int("goals", len(nodes)),
			zap.Int("year", gf.Year),
		)
		return nil
	},
}

func flattenGoals(year int, specs []goalSpec, parentID *string) ([]model.GoalNode, error) {
	var nodes []model.GoalNode
	now := time.Now().UTC()
	for _, s := range specs {
		if s.ID == "" || s.Name == "" {
			return nil, eris.Errorf("every goal needs an id and a name (got id=%q name=%q)", s.ID, s.Name)
		}
		nodes = append(nodes, model.GoalNode{
			ID:           s.ID,
			Name:         s.Name,
			GoalType:     s.Type,
			Category:     s.Category,
			Vertical:     s.Vertical,
			TargetValue:  s.Target,
			CurrentValue: s.Current,
			ParentID:     parentID,
			TargetYear:   year,
			IsActive:     true,
			UpdatedAt:    now,
		})
		id := s.ID
		children, err := flattenGoals(year, s.Children, &id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, children...)
	}
	return nodes, nil
}

func init() {
	goalsCmd.Flags().StringVar(&goalsFile, "file", "", "path to the YAML goal file")
	_ = goalsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(goalsCmd)
}
