package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/skillmatch/internal/matcher"
)

// calibrationCase is one labeled query: the message and the skills a
// human judged relevant to it. An empty Expected list means "should
// not match anything".
type calibrationCase struct {
	Query    string   `json:"query"`
	Expected []string `json:"expected"`
}

func calibrateCmd() *cobra.Command {
	var (
		strategy string
		min      float64
		max      float64
		step     float64
	)

	cmd := &cobra.Command{
		Use:   "calibrate <cases.json>",
		Short: "Sweep thresholds over a labeled query set",
		Long: `calibrate scores every labeled query once, then sweeps the match
threshold over a range and reports precision, recall, and F1 at each
step. The cases file is a JSON array of {"query": ..., "expected":
[skill names]} objects.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Strategy = strategy
			}
			if !cmd.Flags().Changed("min") && cfg.Strategy == matcher.StrategyLexical {
				min, max, step = 1, 15, 1
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var cases []calibrationCase
			if err := json.Unmarshal(data, &cases); err != nil {
				return fmt.Errorf("invalid cases file %s: %w", args[0], err)
			}
			if len(cases) == 0 {
				return fmt.Errorf("no cases in %s", args[0])
			}

			loader := newLoader(cfg)
			m, err := newMatcher(cfg, loader)
			if err != nil {
				return err
			}
			available := loader.Summaries()
			if len(available) == 0 {
				return fmt.Errorf("no skills discovered under %s", cfg.Workspace)
			}

			// One Rank call per case; the sweep reuses the scores.
			scored := make([][]matcher.SkillMatch, len(cases))
			for i, c := range cases {
				s, err := m.Rank(cmd.Context(), c.Query, available)
				if err != nil {
					return fmt.Errorf("case %d (%q): %w", i, c.Query, err)
				}
				scored[i] = s
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "THRESHOLD\tPRECISION\tRECALL\tF1")
			bestF1, bestT := -1.0, min
			for t := min; t <= max+step/2; t += step {
				p, r, f1 := evaluate(cases, scored, t, cfg.TopK)
				fmt.Fprintf(w, "%.2f\t%.3f\t%.3f\t%.3f\n", t, p, r, f1)
				if f1 > bestF1 {
					bestF1, bestT = f1, t
				}
			}
			w.Flush()
			fmt.Printf("\nbest threshold %.2f (F1 %.3f) over %d cases\n", bestT, bestF1, len(cases))
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "matching strategy: semantic or lexical")
	cmd.Flags().Float64Var(&min, "min", 0.05, "sweep start")
	cmd.Flags().Float64Var(&max, "max", 0.80, "sweep end")
	cmd.Flags().Float64Var(&step, "step", 0.05, "sweep increment")
	return cmd
}

// evaluate applies threshold and topK to the precomputed scores and
// accumulates micro-averaged precision, recall, and F1.
func evaluate(cases []calibrationCase, scored [][]matcher.SkillMatch, threshold float64, topK int) (precision, recall, f1 float64) {
	var tp, fp, fn int
	for i, c := range cases {
		expected := make(map[string]bool, len(c.Expected))
		for _, name := range c.Expected {
			expected[name] = true
		}

		predicted := make(map[string]bool)
		for _, sm := range scored[i] {
			if sm.Score < threshold || len(predicted) >= topK {
				continue
			}
			predicted[sm.Name] = true
		}

		for name := range predicted {
			if expected[name] {
				tp++
			} else {
				fp++
			}
		}
		for name := range expected {
			if !predicted[name] {
				fn++
			}
		}
	}

	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}
