package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trellis/internal/object"
	"trellis/internal/repo"
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "List tasks across both addressing systems",
	Long: `List tasks sorted by priority then creation time. Without --status only
open tasks are shown. --scope limits the listing to tasks under one project,
epic, or feature; standalone tasks only appear in unscoped listings.`,
	Args: cobra.NoArgs,
	RunE: runBacklog,
}

func init() {
	backlogCmd.Flags().String("scope", "", "Limit to descendants of this object ID")
	backlogCmd.Flags().StringSlice("status", nil, "Status filter, repeatable")
	backlogCmd.Flags().StringSlice("priority", nil, "Priority filter, repeatable")
}

func runBacklog(cmd *cobra.Command, args []string) error {
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}

	scope, _ := cmd.Flags().GetString("scope")
	statusFlags, _ := cmd.Flags().GetStringSlice("status")
	priorityFlags, _ := cmd.Flags().GetStringSlice("priority")

	filter := repo.BacklogFilter{Scope: scope}
	for _, s := range statusFlags {
		status, err := object.ParseStatus(object.KindTask, s)
		if err != nil {
			return err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, p := range priorityFlags {
		priority, err := object.ParsePriority(p)
		if err != nil {
			return err
		}
		filter.Priorities = append(filter.Priorities, priority)
	}

	tasks, err := ctx.repo.Backlog(ctx.cfg.Root, filter)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks match the filter.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tSTATUS\tPARENT\tTITLE")
	for _, task := range tasks {
		parent := task.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "T-%s\t%s\t%s\t%s\t%s\n", task.ID, task.Priority, task.Status, parent, task.Title)
	}
	return w.Flush()
}
