package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trellis/internal/object"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <target>",
	Short: "Move an object to a new lifecycle status",
	Long: `Apply a status transition. Each kind has its own lifecycle; illegal jumps
are rejected. Tasks cannot be moved to done here, use 'trellis complete'.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	id := args[0]
	kind, ok := object.KindForID(id)
	if !ok {
		return fmt.Errorf("cannot infer kind from %q; pass a prefixed ID such as T-%s", id, id)
	}
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}
	target, err := object.ParseStatus(kind, args[1])
	if err != nil {
		return err
	}
	obj, err := ctx.repo.SetStatus(ctx.cfg.Root, kind, id, target)
	if err != nil {
		return err
	}
	ctx.log.Info("Status %s-%s → %s", obj.Kind.Prefix(), obj.ID, obj.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "%s-%s is now %s\n", obj.Kind.Prefix(), obj.ID, obj.Status)
	return nil
}
