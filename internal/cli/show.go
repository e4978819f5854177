package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trellis/internal/object"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Display one planning record",
	Long: `Resolve an ID to its file and print the record. Prefixed IDs such as
T-fix-login carry their kind; bare IDs need --kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("kind", "", "Object kind when the ID has no prefix")
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	kind, ok := object.KindForID(id)
	if !ok {
		kindFlag, _ := cmd.Flags().GetString("kind")
		if kindFlag == "" {
			return fmt.Errorf("cannot infer kind from %q; pass a prefixed ID or --kind", id)
		}
		var err error
		kind, err = object.ParseKind(kindFlag)
		if err != nil {
			return err
		}
	}
	ctx, err := openPlanningRoot()
	if err != nil {
		return err
	}
	path, err := ctx.repo.Resolver(ctx.cfg.Root).IDToPath(kind, id)
	if err != nil {
		return err
	}
	obj, err := ctx.repo.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderObject(obj, path))
	return nil
}

func renderObject(obj *object.PlanningObject, path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s-%s · %s\n", obj.Kind.Prefix(), obj.ID, obj.Title)
	fmt.Fprintf(&b, "  kind:     %s (%s)\n", obj.Kind, obj.HierarchyContext())
	fmt.Fprintf(&b, "  status:   %s\n", obj.Status)
	fmt.Fprintf(&b, "  priority: %s\n", obj.Priority)
	if obj.Parent != "" {
		fmt.Fprintf(&b, "  parent:   %s\n", obj.Parent)
	}
	if len(obj.Prerequisites) > 0 {
		fmt.Fprintf(&b, "  prereqs:  %s\n", strings.Join(obj.Prerequisites, ", "))
	}
	if obj.Worktree != "" {
		fmt.Fprintf(&b, "  worktree: %s\n", obj.Worktree)
	}
	fmt.Fprintf(&b, "  created:  %s\n", obj.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  updated:  %s\n", obj.Updated.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  file:     %s\n", path)
	if body := strings.TrimSpace(obj.Body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}
