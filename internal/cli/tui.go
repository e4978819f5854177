package cli

import (
	"github.com/spf13/cobra"

	"trellis/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the backlog interactively",
	Long: `Open the terminal backlog browser. Hotkeys: c claims the next unblocked
task, x completes the selected task, r refreshes, q quits.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}
	return tui.Run(ctx.cfg)
}
