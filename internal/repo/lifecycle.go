package repo

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"trellis/internal/object"
	"trellis/internal/resolver"
	"trellis/internal/validator"
)

// CreateRequest describes a new planning object.
type CreateRequest struct {
	Kind     object.Kind
	Title    string
	// ID optionally fixes the id instead of deriving it from the title.
	// Externally supplied ids pass the loose charset validation; generated
	// ids are always lowercase slugs.
	ID            string
	Parent        string
	Priority      object.Priority
	Prerequisites []string
	Body          string
}

// CreateObject validates the request, generates or validates the id, and
// persists the new record at its creation path. Validation failures for the
// object's fields and prerequisites aggregate into one error.
func (r *Repository) CreateObject(root string, req CreateRequest) (*object.PlanningObject, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("repo: invalid kind %q", string(req.Kind))
	}
	res := r.Resolver(root)

	id := strings.TrimSpace(req.ID)
	if id == "" {
		generated, err := res.GenerateID(req.Kind, req.Title)
		if err != nil {
			return nil, err
		}
		id = generated
	} else {
		id = resolver.CleanID(id)
		if err := resolver.ValidateID(id); err != nil {
			return nil, err
		}
		if _, err := res.IDToPath(req.Kind, id); err == nil {
			return nil, fmt.Errorf("repo: %s %q already exists", req.Kind, id)
		} else {
			var nf *resolver.NotFoundError
			if !errors.As(err, &nf) {
				return nil, err
			}
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = object.PriorityNormal
	}
	now := r.now()
	obj := &object.PlanningObject{
		ID:            id,
		Title:         req.Title,
		Kind:          req.Kind,
		Parent:        resolver.CleanID(req.Parent),
		Status:        object.InitialStatus(req.Kind),
		Priority:      priority,
		Prerequisites: append([]string(nil), req.Prerequisites...),
		Created:       now,
		Updated:       now,
		SchemaVersion: SchemaVersion,
		Body:          req.Body,
	}

	var c object.Collector
	object.ValidateObject(obj, &c)
	validator.New(r.GetAllObjects).ValidateExistence(obj.Prerequisites, root, &c)
	if err := c.Err(); err != nil {
		return nil, err
	}

	path, err := res.PathForNewObject(obj.Kind, obj.ID, obj.Parent, obj.Status)
	if err != nil {
		return nil, err
	}
	if err := r.writeRecord(obj, path); err != nil {
		return nil, err
	}
	r.invalidateParent(res, obj)
	return obj, nil
}

// SetStatus performs a generic status update, gated by the per-kind
// transition table. Tasks can never reach done through this path; that
// transition belongs to CompleteTask.
func (r *Repository) SetStatus(root string, kind object.Kind, id string, target object.Status) (*object.PlanningObject, error) {
	res := r.Resolver(root)
	path, err := res.IDToPath(kind, id)
	if err != nil {
		return nil, err
	}
	obj, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	if err := object.ValidateStatusUpdate(kind, obj.Status, target, obj.HierarchyContext()); err != nil {
		return nil, err
	}
	obj.Status = target
	if err := r.Write(obj, root); err != nil {
		return nil, err
	}
	return obj, nil
}

// CompleteTask is the dedicated completion operation: the task must currently
// be in-progress or review. The record moves to its owning tasks-done
// directory under a timestamp-prefixed filename, the worktree association is
// cleared, and an optional summary is appended to the body.
func (r *Repository) CompleteTask(root, id, summary string) (*object.PlanningObject, error) {
	res := r.Resolver(root)
	oldPath, err := res.IDToPath(object.KindTask, id)
	if err != nil {
		return nil, err
	}
	obj, err := r.Load(oldPath)
	if err != nil {
		return nil, err
	}
	if err := object.ValidateTaskCompletion(obj.Status); err != nil {
		return nil, err
	}
	obj.Status = object.StatusDone
	obj.Worktree = ""
	obj.SchemaVersion = SchemaVersion
	if now := r.now(); now.After(obj.Updated) {
		obj.Updated = now
	}
	if summary = strings.TrimSpace(summary); summary != "" {
		if obj.Body != "" && !strings.HasSuffix(obj.Body, "\n") {
			obj.Body += "\n"
		}
		obj.Body += "\n## Completion\n\n" + summary + "\n"
	}

	donePath, err := res.PathForNewObject(object.KindTask, obj.ID, obj.Parent, object.StatusDone)
	if err != nil {
		return nil, err
	}
	if err := r.writeRecord(obj, donePath); err != nil {
		return nil, err
	}
	if donePath != oldPath {
		if err := os.Remove(oldPath); err != nil {
			return nil, fmt.Errorf("repo: remove %s after completion: %w", oldPath, err)
		}
	}
	r.invalidateParent(res, obj)
	return obj, nil
}
