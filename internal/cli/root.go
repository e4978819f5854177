// Package cli wires the trellis commands. Every command resolves the
// planning root first, either from --root or by walking up from the working
// directory, then operates through the repository layer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trellis/internal/cache"
	"trellis/internal/config"
	"trellis/internal/logging"
	"trellis/internal/repo"
)

var (
	rootDir string
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "trellis",
		Short: "File-backed planning store for projects, epics, features, and tasks",
		Long: `Trellis keeps planning records as markdown files with YAML front matter,
organized in a directory hierarchy that both humans and automated agents can
read and write. Tasks live either under a feature or standalone at the root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Planning root (default: nearest ancestor with a .trellis directory)")
}

func registerCommands() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(backlogCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(tuiCmd)
}

// Execute runs the root command.
func Execute(version string) error {
	registerCommands()
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// planContext bundles what most commands need: the loaded config, a
// repository with the configured children cache, and the run log.
type planContext struct {
	cfg  *config.Config
	repo *repo.Repository
	log  *logging.Logger
}

func openPlanningRoot() (*planContext, error) {
	root := rootDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root, err = config.FindRoot(cwd)
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	children, err := cache.New(cfg.Settings.CacheEntries)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogPath())
	if err != nil {
		log = nil
	}
	return &planContext{
		cfg:  cfg,
		repo: repo.New(repo.WithChildrenCache(children)),
		log:  log,
	}, nil
}
