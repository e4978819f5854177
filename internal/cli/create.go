package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trellis/internal/object"
	"trellis/internal/repo"
)

var createCmd = &cobra.Command{
	Use:   "create <kind>",
	Short: "Create a project, epic, feature, or task",
	Long: `Create a new planning record. The ID is generated from the title unless
--id is given. Epics, features, and hierarchical tasks need --parent naming
their enclosing object; tasks without a parent are standalone.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "Human-readable title (required)")
	createCmd.Flags().String("id", "", "Explicit ID instead of a generated slug")
	createCmd.Flags().String("parent", "", "Parent object ID")
	createCmd.Flags().String("priority", "", "Priority: high, normal, or low")
	createCmd.Flags().StringSlice("prereq", nil, "Prerequisite object ID, repeatable")
	createCmd.Flags().String("body", "", "Markdown body for the record")
	_ = createCmd.MarkFlagRequired("title")
}

func runCreate(cmd *cobra.Command, args []string) error {
	kind, err := object.ParseKind(args[0])
	if err != nil {
		return err
	}
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	id, _ := cmd.Flags().GetString("id")
	parent, _ := cmd.Flags().GetString("parent")
	priorityFlag, _ := cmd.Flags().GetString("priority")
	prereqs, _ := cmd.Flags().GetStringSlice("prereq")
	body, _ := cmd.Flags().GetString("body")

	if priorityFlag == "" {
		priorityFlag = ctx.cfg.Settings.DefaultPriority
	}
	priority, err := object.ParsePriority(priorityFlag)
	if err != nil {
		return err
	}

	obj, err := ctx.repo.CreateObject(ctx.cfg.Root, repo.CreateRequest{
		Kind:          kind,
		Title:         title,
		ID:            id,
		Parent:        parent,
		Priority:      priority,
		Prerequisites: prereqs,
		Body:          body,
	})
	if err != nil {
		return err
	}
	ctx.log.Info("Created %s %s-%s (%s)", obj.Kind, obj.Kind.Prefix(), obj.ID, obj.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s-%s\n", obj.Kind, obj.Kind.Prefix(), obj.ID)
	return nil
}
