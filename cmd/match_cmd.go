package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/skillmatch/internal/tracing"
	"github.com/nextlevelbuilder/skillmatch/internal/tracing/otelexport"
)

func matchCmd() *cobra.Command {
	var (
		strategy  string
		threshold float64
		topK      int
		noGate    bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "match <message>",
		Short: "Match a message against the discovered skills",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Strategy = strategy
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Threshold = threshold
			}
			if topK > 0 {
				cfg.TopK = topK
			}
			if noGate {
				cfg.Gate = false
			}

			loader := newLoader(cfg)
			m, err := newMatcher(cfg, loader)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			collector := tracing.NewCollector()
			collector.Start()
			defer collector.Stop()
			if cfg.OTLPEndpoint != "" {
				exp, err := otelexport.New(ctx, otelexport.Config{
					Endpoint: cfg.OTLPEndpoint,
					Insecure: true,
				})
				if err != nil {
					return fmt.Errorf("otlp exporter: %w", err)
				}
				collector.SetExporter(exp)
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = exp.Shutdown(sctx)
				}()
			}

			message := strings.Join(args, " ")
			available := loader.Summaries()

			start := time.Now()
			result, err := m.Match(ctx, message, available)
			if err != nil {
				return err
			}
			collector.Record(tracing.MatchSpan{
				StartedAt:  start,
				Duration:   time.Since(start),
				Query:      message,
				Strategy:   cfg.Strategy,
				Candidates: len(available),
				Matched:    result.Matched,
				Skills:     result.Skills,
				Threshold:  cfg.Threshold,
				Reason:     result.Reason,
			})

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Println(result.Reason)
			for _, sm := range result.Matches {
				fmt.Printf("  %-30s %.4f\n", sm.Name, sm.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "matching strategy: semantic or lexical")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum score for a match")
	cmd.Flags().IntVar(&topK, "topk", 0, "maximum number of matches")
	cmd.Flags().BoolVar(&noGate, "no-gate", false, "disable the meta-conversation gate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}
