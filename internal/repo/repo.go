// Package repo is the object repository: it owns every read and write of
// planning records on disk. Writes go through a temp-file-then-rename so no
// reader ever observes a half-written record.
package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"trellis/internal/cache"
	"trellis/internal/object"
	"trellis/internal/record"
	"trellis/internal/resolver"
)

// SchemaVersion is stamped onto every record the repository writes. The core
// never interprets it; it exists for forward compatibility.
const SchemaVersion = "1.1"

// Repository performs record IO against planning roots.
type Repository struct {
	now      func() time.Time
	children *cache.ChildrenCache
}

// Option customizes a Repository during construction.
type Option func(*Repository)

// WithClock overrides the clock used for updated stamps and done filenames.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		r.now = clock
	}
}

// WithChildrenCache shares a children-discovery cache with the resolvers the
// repository builds, and lets writes invalidate it.
func WithChildrenCache(c *cache.ChildrenCache) Option {
	return func(r *Repository) {
		r.children = c
	}
}

// New builds a repository.
func New(opts ...Option) *Repository {
	r := &Repository{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolver returns a resolver for root wired to the repository's clock and
// cache.
func (r *Repository) Resolver(root string) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithClock(r.now)}
	if r.children != nil {
		opts = append(opts, resolver.WithChildrenCache(r.children))
	}
	return resolver.New(root, opts...)
}

// Load reads and decodes the record at path.
func (r *Repository) Load(path string) (*object.PlanningObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repo: read %s: %w", path, err)
	}
	fields, body, err := record.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("repo: parse %s: %w", path, err)
	}
	obj, err := record.ToObject(fields, body)
	if err != nil {
		return nil, fmt.Errorf("repo: decode %s: %w", path, err)
	}
	return obj, nil
}

// Write persists the object under root, stamping updated and schema_version.
// The updated stamp never moves backwards: when the clock lags the object's
// prior value the prior value is kept. The record stays at its current
// location when one exists, otherwise the creation path is used.
func (r *Repository) Write(obj *object.PlanningObject, root string) error {
	var c object.Collector
	object.ValidateObject(obj, &c)
	if err := c.Err(); err != nil {
		return err
	}
	if now := r.now(); now.After(obj.Updated) {
		obj.Updated = now
	}
	obj.SchemaVersion = SchemaVersion

	res := r.Resolver(root)
	path, err := res.IDToPath(obj.Kind, obj.ID)
	if err != nil {
		var nf *resolver.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
		path, err = res.PathForNewObject(obj.Kind, obj.ID, obj.Parent, obj.Status)
		if err != nil {
			return err
		}
	}
	if err := r.writeRecord(obj, path); err != nil {
		return err
	}
	r.invalidateParent(res, obj)
	return nil
}

// writeRecord encodes and atomically replaces the file at path.
func (r *Repository) writeRecord(obj *object.PlanningObject, path string) error {
	data, err := record.Encode(record.FromObject(obj), []byte(obj.Body))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("repo: ensure dir for %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("repo: write %s: %w", path, err)
	}
	return nil
}

// parentKinds maps a kind to the kind of its parent record.
var parentKinds = map[object.Kind]object.Kind{
	object.KindEpic:    object.KindProject,
	object.KindFeature: object.KindEpic,
	object.KindTask:    object.KindFeature,
}

// invalidateParent drops the cached children listing of the mutated object's
// parent, keeping reads coherent after a write.
func (r *Repository) invalidateParent(res *resolver.Resolver, obj *object.PlanningObject) {
	if r.children == nil || obj.Parent == "" {
		return
	}
	parentKind, ok := parentKinds[obj.Kind]
	if !ok {
		return
	}
	parentPath, err := res.IDToPath(parentKind, obj.Parent)
	if err != nil {
		return
	}
	res.InvalidateChildren(parentPath)
}

// recordPatterns enumerates every record location under a root, spanning both
// addressing systems.
func recordPatterns(root string) []string {
	projects := filepath.Join(root, resolver.ProjectsDirName)
	featureBase := filepath.Join(projects, "*", resolver.EpicsDirName, "*", resolver.FeaturesDirName, "*")
	return []string{
		filepath.Join(projects, "*", "project.md"),
		filepath.Join(projects, "*", resolver.EpicsDirName, "*", "epic.md"),
		filepath.Join(featureBase, "feature.md"),
		filepath.Join(featureBase, resolver.TasksOpenDirName, "*.md"),
		filepath.Join(featureBase, resolver.TasksDoneDirName, "*.md"),
		filepath.Join(root, resolver.TasksOpenDirName, "*.md"),
		filepath.Join(root, resolver.TasksDoneDirName, "*.md"),
	}
}

// GetAllObjects builds the cross-system index: every object's id mapped to
// its summary, spanning the hierarchy and the standalone namespace.
func (r *Repository) GetAllObjects(root string) (map[string]object.Summary, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repo: planning root %s: %w", root, err)
	}
	index := make(map[string]object.Summary)
	for _, pattern := range recordPatterns(root) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("repo: scan %s: %w", pattern, err)
		}
		for _, path := range matches {
			obj, err := r.Load(path)
			if err != nil {
				return nil, err
			}
			index[obj.ID] = object.Summary{
				ID:     obj.ID,
				Kind:   obj.Kind,
				Parent: obj.Parent,
				Status: obj.Status,
			}
		}
	}
	return index, nil
}
