package object

import "fmt"

// transitions is the per-kind lifecycle table: current status to the set of
// statuses it may move to. Statuses absent from a kind's table are terminal.
var transitions = map[Kind]map[Status][]Status{
	KindProject: {
		StatusDraft:      {StatusInProgress},
		StatusInProgress: {StatusDone},
	},
	KindEpic: {
		StatusDraft:      {StatusInProgress},
		StatusInProgress: {StatusDone},
	},
	KindFeature: {
		StatusDraft:      {StatusInProgress},
		StatusInProgress: {StatusDone},
	},
	KindTask: {
		StatusOpen:       {StatusInProgress, StatusDone},
		StatusInProgress: {StatusReview, StatusDone},
		StatusReview:     {StatusDone},
	},
}

// TransitionError reports an illegal status change.
type TransitionError struct {
	Kind Kind
	From Status
	To   Status
	// TaskContext is "standalone" or "hierarchy" for tasks, empty otherwise.
	// It only changes the message text, never the legality decision.
	TaskContext string
}

func (e *TransitionError) Error() string {
	if e.Kind == KindTask && e.TaskContext != "" {
		return fmt.Sprintf("object: invalid status transition for %s task: %s -> %s", e.TaskContext, e.From, e.To)
	}
	return fmt.Sprintf("object: invalid status transition for %s: %s -> %s", e.Kind, e.From, e.To)
}

// ValidateStatusTransition reports whether the status change is legal for the
// kind. Same-status transitions are always allowed. taskContext should be the
// value of HierarchyContext for tasks and is ignored for other kinds.
func ValidateStatusTransition(kind Kind, from, to Status, taskContext string) error {
	if !kind.Valid() {
		return fmt.Errorf("object: invalid kind %q", string(kind))
	}
	if from == to {
		return nil
	}
	for _, allowed := range transitions[kind][from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{Kind: kind, From: from, To: to, TaskContext: taskContext}
}

// ValidateStatusUpdate gates the generic update path. It applies the same
// transition table but additionally refuses to move a task to done: completing
// a task is reserved for the dedicated completion operation.
func ValidateStatusUpdate(kind Kind, from, to Status, taskContext string) error {
	if kind == KindTask && to == StatusDone && from != StatusDone {
		return fmt.Errorf("object: tasks cannot be set to done through a status update; use the completion operation")
	}
	return ValidateStatusTransition(kind, from, to, taskContext)
}

// ValidateTaskCompletion checks that a task may be completed from its current
// status. Completion requires in-progress or review.
func ValidateTaskCompletion(from Status) error {
	if from != StatusInProgress && from != StatusReview {
		return fmt.Errorf("object: task must be in-progress or review to complete, not %s", from)
	}
	return nil
}
