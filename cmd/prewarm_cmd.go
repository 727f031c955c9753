package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func prewarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prewarm",
		Short: "Precompute embeddings for every discovered skill",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			loader := newLoader(cfg)
			list := loader.Summaries()
			if len(list) == 0 {
				fmt.Println("no skills discovered")
				return nil
			}

			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			if err := svc.WaitUntilReady(cmd.Context()); err != nil {
				return err
			}

			n := svc.Prewarm(cmd.Context(), list, loader.Content)
			fmt.Printf("prewarmed %d/%d skills (model %s, dim %d)\n", n, len(list), svc.Model(), svc.Dim())
			return nil
		},
	}
}
