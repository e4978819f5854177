// Package scheduler selects and claims the best candidate task from the open
// backlog. Selection is priority-then-age; a task is only eligible once every
// prerequisite object has reached done.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"trellis/internal/object"
	"trellis/internal/repo"
	"trellis/internal/resolver"
)

var (
	// ErrNoAvailableTask is the single error kind behind both "backlog is
	// empty" and "everything is blocked". Callers treat both identically:
	// wait and retry.
	ErrNoAvailableTask = errors.New("scheduler: no task available")

	// ErrClaimConflict is returned when the selected task's on-disk status
	// changed between the read and the write, meaning another process
	// claimed it first.
	ErrClaimConflict = errors.New("scheduler: task was claimed concurrently")
)

// Scheduler claims tasks through an object repository.
type Scheduler struct {
	repo *repo.Repository
	now  func() time.Time
}

// Option customizes a Scheduler during construction.
type Option func(*Scheduler)

// WithClock overrides the clock used for claim timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = clock
	}
}

// New builds a scheduler over the repository.
func New(r *repo.Repository, opts ...Option) *Scheduler {
	s := &Scheduler{repo: r, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClaimNextTask picks the highest-priority unblocked open task across both
// addressing systems, moves it to in-progress, associates the worktree when
// one is given, persists it, and returns the mutated record.
//
// There is no cross-process lock around the read-decide-write sequence; two
// processes racing here can select the same task. The status is re-read
// immediately before the write and the claim fails with ErrClaimConflict if
// it is no longer open, so at most one racer's claim lands.
func (s *Scheduler) ClaimNextTask(root, worktreePath string) (*object.PlanningObject, error) {
	open, err := s.repo.Backlog(root, repo.BacklogFilter{Statuses: []object.Status{object.StatusOpen}})
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no open tasks available in backlog", ErrNoAvailableTask)
	}

	index, err := s.repo.GetAllObjects(root)
	if err != nil {
		return nil, err
	}
	var candidates []*object.PlanningObject
	for _, task := range open {
		if isUnblocked(task, index) {
			candidates = append(candidates, task)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no unblocked tasks available, all open tasks have incomplete prerequisites", ErrNoAvailableTask)
	}

	// The backlog already arrives priority-then-created ordered; the sort
	// here keeps the claim correct even if that contract loosens.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority.Rank() != candidates[j].Priority.Rank() {
			return candidates[i].Priority.Rank() < candidates[j].Priority.Rank()
		}
		return candidates[i].Created.Before(candidates[j].Created)
	})
	winner := candidates[0]

	// Compare-and-swap guard: reject the claim if the record on disk moved
	// past open since the backlog was read.
	res := s.repo.Resolver(root)
	path, err := res.IDToPath(object.KindTask, winner.ID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Load(path)
	if err != nil {
		return nil, err
	}
	if current.Status != object.StatusOpen {
		return nil, fmt.Errorf("%w: %s is now %s", ErrClaimConflict, winner.ID, current.Status)
	}

	current.Status = object.StatusInProgress
	current.Updated = s.now()
	if worktreePath != "" {
		current.Worktree = worktreePath
	}
	if err := s.repo.Write(current, root); err != nil {
		return nil, err
	}
	return current, nil
}

// isUnblocked reports whether every prerequisite of the task resolves to an
// object whose current status is done. Tasks without prerequisites are
// trivially unblocked; a prerequisite that does not resolve blocks the task.
func isUnblocked(task *object.PlanningObject, index map[string]object.Summary) bool {
	for _, raw := range task.Prerequisites {
		summary, ok := index[resolver.CleanID(raw)]
		if !ok || summary.Status != object.StatusDone {
			return false
		}
	}
	return true
}
