package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trellis/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a planning root",
	Long: `Create the planning directory skeleton: projects/, tasks-open/, tasks-done/,
and .trellis/ with a default trellis.yaml. Running init on an existing root is
safe; existing files are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := rootDir
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		target = cwd
	}
	if err := config.InitPlanningRoot(target); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized planning root at %s\n", target)
	return nil
}
