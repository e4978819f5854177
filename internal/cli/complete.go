package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Complete a task and archive its record",
	Long: `Mark a task done and move its file into the matching tasks-done directory
with a timestamped name. Only in-progress or review tasks can complete.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().String("summary", "", "Completion summary appended to the record body")
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}
	summary, _ := cmd.Flags().GetString("summary")

	task, err := ctx.repo.CompleteTask(ctx.cfg.Root, args[0], summary)
	if err != nil {
		return err
	}
	ctx.log.Info("Completed T-%s (%s)", task.ID, task.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "Completed T-%s · %s\n", task.ID, task.Title)
	return nil
}
