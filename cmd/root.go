// Package cmd implements the skillmatch diagnostic CLI: offline tools
// for exercising the matching core, ranking scores, and calibrating
// thresholds.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/skillmatch/internal/config"
)

var (
	flagConfig    string
	flagWorkspace string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "skillmatch",
	Short: "Match free-text requests against a skill catalog",
	Long: `skillmatch scores a user message against the available skills using
embedding cosine similarity or a local BM25 index, and reports which
skills are plausibly relevant.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(rankCmd())
	rootCmd.AddCommand(calibrateCmd())
	rootCmd.AddCommand(skillsCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(prewarmCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.skillmatch/config.json5)")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace root to scan for skills/ (default cwd)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagWorkspace != "" {
		cfg.Workspace = flagWorkspace
	}
	if cfg.Workspace == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Workspace = wd
		}
	}
	return cfg, nil
}
