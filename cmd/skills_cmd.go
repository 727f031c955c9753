package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/skillmatch/internal/skills"
)

func skillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect the discovered skill catalog",
	}
	cmd.AddCommand(skillsListCmd(), skillsShowCmd(), skillsWatchCmd())
	return cmd
}

func skillsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every discovered skill",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			infos := newLoader(cfg).List()
			if len(infos) == 0 {
				fmt.Println("no skills discovered")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCE\tDESCRIPTION")
			for _, info := range infos {
				desc := info.Description
				if len(desc) > 60 {
					desc = desc[:57] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Source, desc)
			}
			return w.Flush()
		},
	}
}

func skillsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch skill directories and report changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			loader := newLoader(cfg)
			watcher, err := skills.NewWatcher(loader)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()

			last := loader.Version()
			fmt.Printf("watching %d directories, %d skills (ctrl-c to stop)\n",
				len(loader.Dirs()), len(loader.List()))

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if v := loader.Version(); v != last {
						last = v
						fmt.Printf("skills changed, %d discovered\n", len(loader.List()))
					}
				}
			}
		},
	}
}

func skillsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a skill's resolved content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			loader := newLoader(cfg)
			info, ok := loader.Get(args[0])
			if !ok {
				return fmt.Errorf("skill %q not found", args[0])
			}
			content, ok := loader.Content(info.Name)
			if !ok {
				return fmt.Errorf("skill %q has no readable content", info.Name)
			}

			fmt.Printf("# %s (%s)\n# %s\n\n", info.Name, info.Source, info.Path)
			fmt.Println(content)
			return nil
		},
	}
}
