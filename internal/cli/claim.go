package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trellis/internal/scheduler"
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the next unblocked task",
	Long: `Pick the highest-priority open task whose prerequisites are all done,
move it to in-progress, and print it. Ties break toward the oldest task.`,
	Args: cobra.NoArgs,
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().String("worktree", "", "Worktree path to associate with the claimed task")
}

func runClaim(cmd *cobra.Command, args []string) error {
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}
	worktree, _ := cmd.Flags().GetString("worktree")

	task, err := scheduler.New(ctx.repo).ClaimNextTask(ctx.cfg.Root, worktree)
	if err != nil {
		return err
	}
	ctx.log.Info("Claimed T-%s (%s)", task.ID, task.Priority)
	fmt.Fprintf(cmd.OutOrStdout(), "Claimed T-%s · %s [%s]\n", task.ID, task.Title, task.Priority)
	if task.Worktree != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Worktree: %s\n", task.Worktree)
	}
	return nil
}
