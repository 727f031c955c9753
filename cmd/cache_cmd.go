package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/skillmatch/internal/embed"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the embedding cache",
	}
	cmd.AddCommand(cacheInfoCmd(), cachePurgeCmd())
	return cmd
}

// openCache builds the cache layer directly, without constructing the
// embedding service (which would probe the encoder backend).
func openCache() (*embed.Cache, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	c, err := embed.NewCache(cfg.ResolveCacheDir(), cfg.Model)
	if err != nil {
		return nil, "", err
	}
	return c, cfg.Model, nil
}

func cacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show embedding cache location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, model, err := openCache()
			if err != nil {
				return err
			}
			entries, bytes, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("model:   %s\n", model)
			fmt.Printf("dir:     %s\n", c.Dir())
			fmt.Printf("entries: %d\n", entries)
			fmt.Printf("size:    %d bytes\n", bytes)
			return nil
		},
	}
}

func cachePurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete all cached embeddings for the configured model",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, model, err := openCache()
			if err != nil {
				return err
			}
			entries, _, err := c.Stats()
			if err != nil {
				return err
			}
			if err := c.Purge(); err != nil {
				return err
			}
			fmt.Printf("purged %d entries for %s\n", entries, model)
			return nil
		},
	}
}
