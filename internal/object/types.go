// Package object defines the planning object model shared by every layer of
// the store: the four record kinds, their status and priority enums, the
// per-kind lifecycle tables, and the validation collector used to aggregate
// per-object failures.
package object

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies one of the four planning record types.
type Kind string

const (
	KindProject Kind = "project"
	KindEpic    Kind = "epic"
	KindFeature Kind = "feature"
	KindTask    Kind = "task"
)

// Kinds lists every valid kind in hierarchy order.
var Kinds = []Kind{KindProject, KindEpic, KindFeature, KindTask}

// Prefix returns the single-letter filename prefix for the kind ("P", "E",
// "F", "T").
func (k Kind) Prefix() string {
	switch k {
	case KindProject:
		return "P"
	case KindEpic:
		return "E"
	case KindFeature:
		return "F"
	case KindTask:
		return "T"
	}
	return ""
}

// Valid reports whether the kind is one of the four known record types.
func (k Kind) Valid() bool {
	return k.Prefix() != ""
}

// ParseKind converts a raw string into a Kind.
func ParseKind(value string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !k.Valid() {
		return "", fmt.Errorf("object: invalid kind %q", value)
	}
	return k, nil
}

// KindForID infers the kind from a prefixed ID such as "T-fix-login".
// IDs without a recognized prefix report false.
func KindForID(id string) (Kind, bool) {
	if len(id) < 2 || id[1] != '-' {
		return "", false
	}
	for _, k := range Kinds {
		if k.Prefix() == strings.ToUpper(id[:1]) {
			return k, true
		}
	}
	return "", false
}

// Status is the lifecycle state of a planning object. Project, epic, and
// feature share the draft lifecycle; tasks use the open lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// statusSets restricts which statuses each kind may carry.
var statusSets = map[Kind][]Status{
	KindProject: {StatusDraft, StatusInProgress, StatusDone},
	KindEpic:    {StatusDraft, StatusInProgress, StatusDone},
	KindFeature: {StatusDraft, StatusInProgress, StatusDone},
	KindTask:    {StatusOpen, StatusInProgress, StatusReview, StatusDone},
}

// StatusesFor returns the statuses legal for the kind.
func StatusesFor(kind Kind) []Status {
	set := statusSets[kind]
	out := make([]Status, len(set))
	copy(out, set)
	return out
}

// StatusValidFor reports whether the status belongs to the kind's status set.
func StatusValidFor(kind Kind, status Status) bool {
	for _, s := range statusSets[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// InitialStatus returns the status a freshly created object carries.
func InitialStatus(kind Kind) Status {
	if kind == KindTask {
		return StatusOpen
	}
	return StatusDraft
}

// ParseStatus converts a raw string into a Status for the given kind.
func ParseStatus(kind Kind, value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !StatusValidFor(kind, s) {
		return "", fmt.Errorf("object: invalid status %q for kind %s", value, kind)
	}
	return s, nil
}

// Priority orders tasks in the backlog. High sorts before normal, normal
// before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// priorityAliases maps accepted input tokens onto canonical priorities before
// strict matching. "medium" is a historical alias for normal.
var priorityAliases = map[string]Priority{
	"medium": PriorityNormal,
}

// ParsePriority converts a raw string into a Priority, consulting the alias
// table first.
func ParsePriority(value string) (Priority, error) {
	token := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := priorityAliases[token]; ok {
		return alias, nil
	}
	switch p := Priority(token); p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return p, nil
	}
	return "", fmt.Errorf("object: invalid priority %q", value)
}

// Rank returns the scheduling rank of the priority; lower ranks claim first.
// Unknown priorities rank after low so malformed records never jump the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// PlanningObject is the single entity underlying all four record kinds.
// Exactly one record file owns each object; the resolver decides where that
// file lives.
type PlanningObject struct {
	ID            string
	Title         string
	Kind          Kind
	Parent        string
	Status        Status
	Priority      Priority
	Prerequisites []string
	Created       time.Time
	Updated       time.Time
	Worktree      string
	SchemaVersion string
	Body          string
}

// Standalone reports whether a task lives in the flat namespace at the
// planning root. Only meaningful for tasks.
func (o *PlanningObject) Standalone() bool {
	return o.Kind == KindTask && o.Parent == ""
}

// HierarchyContext names the addressing system a task belongs to, for error
// messages.
func (o *PlanningObject) HierarchyContext() string {
	if o.Standalone() {
		return "standalone"
	}
	return "hierarchy"
}

// Summary is the trimmed cross-system index entry returned by the repository's
// full-object listing and consumed by the prerequisite validator and scheduler.
type Summary struct {
	ID     string
	Kind   Kind
	Parent string
	Status Status
}
