package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trellis/internal/object"
	"trellis/internal/resolver"
)

// BacklogFilter narrows a backlog query. Zero values mean "no restriction"
// except Statuses, which defaults to the open backlog.
type BacklogFilter struct {
	// Scope restricts results to tasks under the named project, epic, or
	// feature. Standalone tasks never match a scope.
	Scope string
	// Statuses filters by task status; empty means open only.
	Statuses []object.Status
	// Priorities filters by priority; empty means all.
	Priorities []object.Priority
}

// Backlog loads every task matching the filter across both addressing
// systems, ordered by (priority rank, created) with earlier creation first.
func (r *Repository) Backlog(root string, filter BacklogFilter) ([]*object.PlanningObject, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repo: planning root %s: %w", root, err)
	}
	scopeDir, err := r.scopeDir(root, filter.Scope)
	if err != nil {
		return nil, err
	}
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []object.Status{object.StatusOpen}
	}

	var tasks []*object.PlanningObject
	for _, path := range r.taskPaths(root) {
		if scopeDir != "" && !strings.HasPrefix(path, scopeDir+string(filepath.Separator)) {
			continue
		}
		obj, err := r.Load(path)
		if err != nil {
			return nil, err
		}
		if !statusMatches(obj.Status, statuses) {
			continue
		}
		if len(filter.Priorities) > 0 && !priorityMatches(obj.Priority, filter.Priorities) {
			continue
		}
		tasks = append(tasks, obj)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority.Rank() != tasks[j].Priority.Rank() {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		}
		return tasks[i].Created.Before(tasks[j].Created)
	})
	return tasks, nil
}

// taskPaths lists every task record under root, standalone first.
func (r *Repository) taskPaths(root string) []string {
	patterns := []string{
		filepath.Join(root, resolver.TasksOpenDirName, "*.md"),
		filepath.Join(root, resolver.TasksDoneDirName, "*.md"),
		filepath.Join(root, resolver.ProjectsDirName, "*", resolver.EpicsDirName, "*",
			resolver.FeaturesDirName, "*", resolver.TasksOpenDirName, "*.md"),
		filepath.Join(root, resolver.ProjectsDirName, "*", resolver.EpicsDirName, "*",
			resolver.FeaturesDirName, "*", resolver.TasksDoneDirName, "*.md"),
	}
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths
}

// scopeDir resolves a scope id to the directory whose subtree bounds the
// query. The scope may be a project, epic, or feature, with or without its
// kind prefix.
func (r *Repository) scopeDir(root, scope string) (string, error) {
	if strings.TrimSpace(scope) == "" {
		return "", nil
	}
	res := r.Resolver(root)
	for _, kind := range []object.Kind{object.KindProject, object.KindEpic, object.KindFeature} {
		path, err := res.IDToPath(kind, scope)
		if err == nil {
			return filepath.Dir(path), nil
		}
		var nf *resolver.NotFoundError
		if !errors.As(err, &nf) {
			return "", err
		}
	}
	return "", fmt.Errorf("repo: scope %q does not name a project, epic, or feature", scope)
}

func statusMatches(status object.Status, allowed []object.Status) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

func priorityMatches(priority object.Priority, allowed []object.Priority) bool {
	for _, p := range allowed {
		if p == priority {
			return true
		}
	}
	return false
}
