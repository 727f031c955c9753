package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func rankCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "rank <message>",
		Short: "Score every skill against a message, unfiltered",
		Long: `rank prints the raw relevance score of every discovered skill,
without threshold filtering or truncation. Useful for picking a
threshold before committing it to the config.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Strategy = strategy
			}

			loader := newLoader(cfg)
			m, err := newMatcher(cfg, loader)
			if err != nil {
				return err
			}

			available := loader.Summaries()
			if len(available) == 0 {
				fmt.Println("no skills discovered")
				return nil
			}

			scored, err := m.Rank(cmd.Context(), strings.Join(args, " "), available)
			if err != nil {
				return err
			}
			for _, sm := range scored {
				fmt.Printf("%-30s %.4f\n", sm.Name, sm.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "matching strategy: semantic or lexical")
	return cmd
}
