// Package resolver is the sole authority on where planning records live. It
// translates logical (kind, id) pairs into filesystem paths across both
// addressing systems, computes creation-time paths, generates collision-free
// ids from titles, and lists the immediate children of a record.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trellis/internal/cache"
	"trellis/internal/object"
)

// Filesystem layout constants. The tree rooted at the planning root is the
// bit-exact contract shared with every other implementation of the store.
const (
	ProjectsDirName  = "projects"
	EpicsDirName     = "epics"
	FeaturesDirName  = "features"
	TasksOpenDirName = "tasks-open"
	TasksDoneDirName = "tasks-done"

	// DoneStampLayout prefixes completed task filenames so they sort
	// chronologically inside tasks-done.
	DoneStampLayout = "20060102T150405"
)

// NotFoundError reports that no record for (kind, id) exists in either
// addressing system.
type NotFoundError struct {
	Kind object.Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolver: %s not found: %q", e.Kind, e.ID)
}

// Resolver resolves ids against one planning root.
type Resolver struct {
	root     string
	now      func() time.Time
	children *cache.ChildrenCache
}

// Option customizes a Resolver during construction.
type Option func(*Resolver)

// WithClock overrides the clock used for completed-task filename stamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Resolver) {
		r.now = clock
	}
}

// WithChildrenCache attaches a children-discovery cache. Without one every
// ChildrenOf call walks the tree.
func WithChildrenCache(c *cache.ChildrenCache) Option {
	return func(r *Resolver) {
		r.children = c
	}
}

// New builds a resolver rooted at the planning tree root.
func New(root string, opts ...Option) *Resolver {
	r := &Resolver{root: root, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the planning tree root.
func (r *Resolver) Root() string {
	return r.root
}

func (r *Resolver) projectsDir() string {
	return filepath.Join(r.root, ProjectsDirName)
}

func (r *Resolver) standaloneOpenDir() string {
	return filepath.Join(r.root, TasksOpenDirName)
}

func (r *Resolver) standaloneDoneDir() string {
	return filepath.Join(r.root, TasksDoneDirName)
}

// prepareID cleans and security-validates an externally supplied id before any
// filesystem access.
func prepareID(kind object.Kind, id string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("resolver: invalid kind %q", string(kind))
	}
	clean := CleanID(id)
	if clean == "" {
		return "", fmt.Errorf("resolver: empty id for kind %s", kind)
	}
	if err := ValidateID(clean); err != nil {
		return "", err
	}
	return clean, nil
}

// IDToPath resolves (kind, id) to the canonical record file. For tasks the
// standalone namespace is searched first (tasks-open, then tasks-done), then
// every feature subtree with tasks-open preferred over tasks-done across the
// whole hierarchy.
func (r *Resolver) IDToPath(kind object.Kind, id string) (string, error) {
	clean, err := prepareID(kind, id)
	if err != nil {
		return "", err
	}
	switch kind {
	case object.KindProject:
		path := filepath.Join(r.projectsDir(), "P-"+clean, "project.md")
		if fileExists(path) {
			return path, nil
		}
	case object.KindEpic:
		pattern := filepath.Join(r.projectsDir(), "*", EpicsDirName, "E-"+clean, "epic.md")
		if path := firstGlobMatch(pattern); path != "" {
			return path, nil
		}
	case object.KindFeature:
		pattern := filepath.Join(r.projectsDir(), "*", EpicsDirName, "*", FeaturesDirName, "F-"+clean, "feature.md")
		if path := firstGlobMatch(pattern); path != "" {
			return path, nil
		}
	case object.KindTask:
		if path, ok := r.findTask(clean); ok {
			return path, nil
		}
	}
	return "", &NotFoundError{Kind: kind, ID: clean}
}

// findTask searches both addressing systems in discovery-priority order.
func (r *Resolver) findTask(id string) (string, bool) {
	open := filepath.Join(r.standaloneOpenDir(), "T-"+id+".md")
	if fileExists(open) {
		return open, true
	}
	if path := latestDoneMatch(r.standaloneDoneDir(), id); path != "" {
		return path, true
	}
	features := r.featureDirs()
	for _, dir := range features {
		path := filepath.Join(dir, TasksOpenDirName, "T-"+id+".md")
		if fileExists(path) {
			return path, true
		}
	}
	for _, dir := range features {
		if path := latestDoneMatch(filepath.Join(dir, TasksDoneDirName), id); path != "" {
			return path, true
		}
	}
	return "", false
}

// featureDirs lists every feature directory in the hierarchy, sorted.
func (r *Resolver) featureDirs() []string {
	pattern := filepath.Join(r.projectsDir(), "*", EpicsDirName, "*", FeaturesDirName, "*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	dirs := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	return dirs
}

// PathForNewObject computes the creation path for a new record. Parents must
// already exist: an epic resolves under its project, a feature under its epic,
// a hierarchical task under its feature. A parentless task lands in the flat
// standalone namespace. Creating directly in done status routes tasks to the
// timestamped tasks-done form.
func (r *Resolver) PathForNewObject(kind object.Kind, id, parent string, status object.Status) (string, error) {
	clean, err := prepareID(kind, id)
	if err != nil {
		return "", err
	}
	switch kind {
	case object.KindProject:
		return filepath.Join(r.projectsDir(), "P-"+clean, "project.md"), nil
	case object.KindEpic:
		projectPath, err := r.IDToPath(object.KindProject, parent)
		if err != nil {
			return "", err
		}
		return filepath.Join(filepath.Dir(projectPath), EpicsDirName, "E-"+clean, "epic.md"), nil
	case object.KindFeature:
		epicPath, err := r.IDToPath(object.KindEpic, parent)
		if err != nil {
			return "", err
		}
		return filepath.Join(filepath.Dir(epicPath), FeaturesDirName, "F-"+clean, "feature.md"), nil
	case object.KindTask:
		var openDir, doneDir string
		if strings.TrimSpace(parent) == "" {
			openDir = r.standaloneOpenDir()
			doneDir = r.standaloneDoneDir()
		} else {
			featurePath, err := r.IDToPath(object.KindFeature, parent)
			if err != nil {
				return "", err
			}
			openDir = filepath.Join(filepath.Dir(featurePath), TasksOpenDirName)
			doneDir = filepath.Join(filepath.Dir(featurePath), TasksDoneDirName)
		}
		if status == object.StatusDone {
			stamp := r.now().UTC().Format(DoneStampLayout)
			return filepath.Join(doneDir, stamp+"-T-"+clean+".md"), nil
		}
		return filepath.Join(openDir, "T-"+clean+".md"), nil
	}
	return "", fmt.Errorf("resolver: invalid kind %q", string(kind))
}

// ChildrenOf returns the sorted record files one level below (kind, id):
// epics of a project, features of an epic, tasks of a feature from both
// tasks-open and tasks-done. Tasks have no children. Paths are absolute and
// sorted as strings.
func (r *Resolver) ChildrenOf(kind object.Kind, id string) ([]string, error) {
	parentPath, err := r.IDToPath(kind, id)
	if err != nil {
		return nil, err
	}
	if kind == object.KindTask {
		return []string{}, nil
	}
	if r.children != nil {
		if kids, ok := r.children.Get(parentPath); ok {
			return kids, nil
		}
	}
	dir := filepath.Dir(parentPath)
	var patterns []string
	switch kind {
	case object.KindProject:
		patterns = []string{filepath.Join(dir, EpicsDirName, "*", "epic.md")}
	case object.KindEpic:
		patterns = []string{filepath.Join(dir, FeaturesDirName, "*", "feature.md")}
	case object.KindFeature:
		patterns = []string{
			filepath.Join(dir, TasksOpenDirName, "*.md"),
			filepath.Join(dir, TasksDoneDirName, "*.md"),
		}
	}
	var kids []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolver: list children of %s %q: %w", kind, id, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				abs = m
			}
			kids = append(kids, abs)
		}
	}
	sort.Strings(kids)
	if kids == nil {
		kids = []string{}
	}
	if r.children != nil {
		_ = r.children.Set(parentPath, kids)
	}
	return kids, nil
}

// InvalidateChildren drops any cached children listing for the record at path.
// Callers that just mutated the tree use this to keep reads coherent.
func (r *Resolver) InvalidateChildren(parentPath string) {
	if r.children != nil {
		r.children.Invalidate(parentPath)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// firstGlobMatch returns the lexicographically first regular file matching the
// pattern, or "".
func firstGlobMatch(pattern string) string {
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if fileExists(m) {
			return m
		}
	}
	return ""
}

// latestDoneMatch finds the newest timestamped done-file for the task id in
// dir. Stamps sort chronologically, so the last match wins.
func latestDoneMatch(dir, id string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "*-T-"+id+".md"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for i := len(matches) - 1; i >= 0; i-- {
		if fileExists(matches[i]) {
			return matches[i]
		}
	}
	return ""
}
