// internal/tui/app.go
//
// Terminal backlog browser for trellis. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trellis/internal/config"
	"trellis/internal/logging"
	"trellis/internal/object"
	"trellis/internal/repo"
	"trellis/internal/resolver"
	"trellis/internal/scheduler"
)

const backlogRefreshInterval = 5 * time.Second

type backlogRefreshMsg struct {
	items []taskItem
	err   error
}

type claimResultMsg struct {
	claimed *object.PlanningObject
	err     error
}

type completeResultMsg struct {
	done *object.PlanningObject
	err  error
}

// taskItem implements list.Item for one backlog entry.
type taskItem struct {
	id       string
	title    string
	status   object.Status
	priority object.Priority
	parent   string
	blocked  bool
	created  time.Time
}

func (i taskItem) Title() string {
	marker := ""
	if i.blocked {
		marker = " ⊘"
	}
	return fmt.Sprintf("%s · %s%s", i.id, i.title, marker)
}

func (i taskItem) Description() string {
	parts := []string{string(i.priority), string(i.status)}
	if i.parent != "" {
		parts = append(parts, fmt.Sprintf("feature %s", i.parent))
	} else {
		parts = append(parts, "standalone")
	}
	if i.blocked {
		parts = append(parts, "waiting on prerequisites")
	}
	return strings.Join(parts, " · ")
}

func (i taskItem) FilterValue() string { return i.id + " " + i.title }

// App is the backlog browser model. It holds all TUI state.
type App struct {
	cfg   *config.Config
	repo  *repo.Repository
	sched *scheduler.Scheduler
	log   *logging.Logger

	backlog   list.Model
	statusMsg string
	lastErr   string

	width  int
	height int
}

// NewApp builds the backlog browser for an initialized planning root.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	r := repo.New()
	log, err := logging.New(cfg.LogPath())
	if err != nil {
		log = nil
	} else {
		log.Info("TUI session opened at %s", cfg.Root)
	}

	backlog := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	backlog.Title = "⬡ TRELLIS BACKLOG"
	backlog.SetShowStatusBar(false)
	backlog.SetFilteringEnabled(true)

	return &App{
		cfg:       cfg,
		repo:      r,
		sched:     scheduler.New(r),
		log:       log,
		backlog:   backlog,
		statusMsg: "c → claim next    x → complete selected    r → refresh    q → quit",
	}, nil
}

// Init kicks off the first backlog load.
func (a *App) Init() tea.Cmd {
	return a.fetchBacklog()
}

// Update routes messages to state changes.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.backlog.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case backlogRefreshMsg:
		if msg.err != nil {
			a.lastErr = msg.err.Error()
		} else {
			a.lastErr = ""
			items := make([]list.Item, len(msg.items))
			for i := range msg.items {
				items[i] = msg.items[i]
			}
			a.backlog.SetItems(items)
		}
		return a, a.scheduleRefresh()

	case claimResultMsg:
		if msg.err != nil {
			a.lastErr = msg.err.Error()
			a.logWarn("Claim failed: %v", msg.err)
		} else {
			a.lastErr = ""
			a.statusMsg = fmt.Sprintf("Claimed %s-%s", msg.claimed.Kind.Prefix(), msg.claimed.ID)
			a.logInfo("Claimed task %s", msg.claimed.ID)
		}
		return a, a.fetchBacklog()

	case completeResultMsg:
		if msg.err != nil {
			a.lastErr = msg.err.Error()
			a.logWarn("Completion failed: %v", msg.err)
		} else {
			a.lastErr = ""
			a.statusMsg = fmt.Sprintf("Completed %s-%s", msg.done.Kind.Prefix(), msg.done.ID)
			a.logInfo("Completed task %s", msg.done.ID)
		}
		return a, a.fetchBacklog()

	case tea.KeyMsg:
		if a.backlog.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			a.logInfo("TUI session closed")
			return a, tea.Quit
		case "r":
			a.statusMsg = "Refreshing backlog..."
			return a, a.fetchBacklog()
		case "c":
			a.statusMsg = "Claiming next unblocked task..."
			return a, a.claimNext()
		case "x":
			if item, ok := a.backlog.SelectedItem().(taskItem); ok {
				a.statusMsg = fmt.Sprintf("Completing %s...", item.id)
				return a, a.completeSelected(item.id)
			}
		}
	}

	var cmd tea.Cmd
	a.backlog, cmd = a.backlog.Update(msg)
	return a, cmd
}

// View renders the backlog list with a log tail and footer.
func (a *App) View() string {
	sections := []string{a.backlog.View()}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	footer := a.statusMsg
	if a.lastErr != "" {
		footer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render("⚠ " + a.lastErr)
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(footer))
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.log == nil {
		return ""
	}
	lines := a.log.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", filepath.Base(a.log.Path())))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) fetchBacklog() tea.Cmd {
	return func() tea.Msg {
		return a.buildBacklogSnapshot()
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(backlogRefreshInterval, func(time.Time) tea.Msg {
		return a.buildBacklogSnapshot()
	})
}

func (a *App) buildBacklogSnapshot() backlogRefreshMsg {
	tasks, err := a.repo.Backlog(a.cfg.Root, repo.BacklogFilter{
		Statuses: []object.Status{object.StatusOpen, object.StatusInProgress, object.StatusReview},
	})
	if err != nil {
		return backlogRefreshMsg{err: err}
	}
	index, err := a.repo.GetAllObjects(a.cfg.Root)
	if err != nil {
		return backlogRefreshMsg{err: err}
	}
	items := make([]taskItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskItem{
			id:       task.ID,
			title:    task.Title,
			status:   task.Status,
			priority: task.Priority,
			parent:   task.Parent,
			blocked:  isBlocked(task, index),
			created:  task.Created,
		})
	}
	return backlogRefreshMsg{items: items}
}

func isBlocked(task *object.PlanningObject, index map[string]object.Summary) bool {
	for _, raw := range task.Prerequisites {
		summary, ok := index[resolver.CleanID(raw)]
		if !ok || summary.Status != object.StatusDone {
			return true
		}
	}
	return false
}

func (a *App) claimNext() tea.Cmd {
	return func() tea.Msg {
		claimed, err := a.sched.ClaimNextTask(a.cfg.Root, "")
		return claimResultMsg{claimed: claimed, err: err}
	}
}

func (a *App) completeSelected(id string) tea.Cmd {
	return func() tea.Msg {
		done, err := a.repo.CompleteTask(a.cfg.Root, id, "Completed via TUI")
		return completeResultMsg{done: done, err: err}
	}
}

func (a *App) logInfo(format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.Warn(format, args...)
}

// Run starts the TUI program and blocks until it exits.
func Run(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
