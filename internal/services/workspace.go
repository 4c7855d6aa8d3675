package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/kanban-board/internal/constants"
	"github.com/yukikurage/kanban-board/internal/models"
	"github.com/yukikurage/kanban-board/internal/repository"
)

var (
	ErrNotReady              = errors.New("workspace is not loaded")
	ErrProjectNotFound       = errors.New("project not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrNoActiveProject       = errors.New("no active project")
	ErrProjectNameRequired   = errors.New("project name is required")
	ErrProjectNameTooLong    = errors.New("project name is too long")
	ErrTitleRequired         = errors.New("title is required")
	ErrTitleTooLong          = errors.New("title is too long")
	ErrInvalidStatus         = errors.New("invalid task status")
	ErrInvalidPriority       = errors.New("invalid task priority")
	ErrInvalidDueDate        = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidTheme          = errors.New("invalid theme")
	ErrInvalidStatusConfigs  = errors.New("status configuration must cover every status with a hex color and a known icon")
	ErrProjectChangeRejected = errors.New("a task cannot move to another project")
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// StoreOpener opens the store the workspace mirrors.
type StoreOpener func(ctx context.Context) (*repository.Store, error)

// QuarantinedTask is a stored task the migration could not normalize.
type QuarantinedTask struct {
	Task   models.Task `json:"task"`
	Reason string      `json:"reason"`
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	ProjectID    *string
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *string
	ClearDueDate bool
}

type WorkspaceOption func(*Workspace)

// WithClock replaces the wall clock used for timestamps, ids and
// notifications.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(w *Workspace) {
		w.now = now
		w.ids = NewIDGenerator(now)
	}
}

func WithMessages(m Messages) WorkspaceOption {
	return func(w *Workspace) {
		w.messages = m
	}
}

// Workspace is the in-memory mirror of the store. Every mutation is written to
// the store first and applied to memory only once the write succeeded, so a
// failed write leaves the mirror untouched.
type Workspace struct {
	open     StoreOpener
	now      func() time.Time
	ids      *IDGenerator
	messages Messages

	loadMu sync.Mutex

	mu              sync.RWMutex
	state           State
	err             error
	store           *repository.Store
	projects        []models.Project
	tasks           []models.Task
	activeProjectID string
	theme           models.Theme
	statusConfigs   models.StatusConfigs
	quarantined     []QuarantinedTask
}

// NewWorkspace creates an uninitialized workspace. Call Load before use.
func NewWorkspace(open StoreOpener, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		open:          open,
		now:           time.Now,
		ids:           NewIDGenerator(time.Now),
		messages:      MessagesFor(""),
		theme:         models.DefaultTheme,
		statusConfigs: models.DefaultStatusConfigs(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type snapshot struct {
	store         *repository.Store
	projects      []models.Project
	tasks         []models.Task
	theme         models.Theme
	statusConfigs models.StatusConfigs
	quarantined   []QuarantinedTask
}

// Load opens the store and seeds the workspace from it. A ready workspace is
// left as is; a failed one may be loaded again.
func (w *Workspace) Load(ctx context.Context) error {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()

	w.mu.Lock()
	if w.state == StateReady {
		w.mu.Unlock()
		return nil
	}
	w.state = StateLoading
	w.err = nil
	w.mu.Unlock()

	snap, err := w.load(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = StateFailed
		w.err = err
		log.Printf("Failed to load workspace: %v", err)
		return err
	}

	w.store = snap.store
	w.projects = snap.projects
	w.tasks = snap.tasks
	w.theme = snap.theme
	w.statusConfigs = snap.statusConfigs
	w.quarantined = snap.quarantined
	w.activeProjectID = ""
	if len(w.projects) > 0 {
		w.activeProjectID = w.projects[0].ID
	}
	w.state = StateReady

	log.Printf("Workspace loaded: %d projects, %d tasks", len(w.projects), len(w.tasks))
	return nil
}

func (w *Workspace) load(ctx context.Context) (*snapshot, error) {
	store, err := w.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	projects, err := store.Projects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	if len(projects) == 0 {
		initial := models.Project{
			ID:   w.ids.Next(constants.ProjectIDPrefix),
			Name: w.messages.DefaultProjectName,
		}
		if err := store.Projects.Add(ctx, &initial); err != nil {
			return nil, fmt.Errorf("failed to create initial project: %w", err)
		}
		projects = []models.Project{initial}
	}

	if n, err := store.Tasks.DeleteOrphans(ctx); err != nil {
		log.Printf("Failed to remove orphaned tasks: %v", err)
	} else if n > 0 {
		log.Printf("Removed %d orphaned tasks", n)
	}

	stored, err := store.Tasks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.ID] = true
	}

	tasks := make([]models.Task, 0, len(stored))
	var quarantined []QuarantinedTask
	var changed []models.Task
	for _, task := range stored {
		if !known[task.ProjectID] {
			continue
		}

		migrated, ok, err := MigrateTask(task)
		if err != nil {
			log.Printf("Skipping task %s: %v", task.ID, err)
			quarantined = append(quarantined, QuarantinedTask{Task: task, Reason: err.Error()})
			continue
		}
		if ok {
			changed = append(changed, migrated)
		}
		tasks = append(tasks, migrated)
	}

	if len(changed) > 0 {
		err := store.Atomically(ctx, func(tx *repository.Store) error {
			for i := range changed {
				if err := tx.Tasks.Put(ctx, &changed[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("Failed to persist %d migrated tasks, will retry on next load: %v", len(changed), err)
		} else {
			log.Printf("Migrated %d legacy tasks", len(changed))
		}
	}

	theme := models.DefaultTheme
	var savedTheme models.Theme
	found, err := store.Settings.GetSetting(ctx, models.SettingTheme, &savedTheme)
	switch {
	case errors.Is(err, repository.ErrCorruptSetting):
		log.Printf("Ignoring stored theme: %v", err)
	case err != nil:
		return nil, fmt.Errorf("failed to load theme: %w", err)
	case found && savedTheme.Valid():
		theme = savedTheme
	}

	statusConfigs := models.DefaultStatusConfigs()
	var savedConfigs models.StatusConfigs
	found, err = store.Settings.GetSetting(ctx, models.SettingStatusConfigs, &savedConfigs)
	switch {
	case errors.Is(err, repository.ErrCorruptSetting):
		log.Printf("Ignoring stored status configuration: %v", err)
	case err != nil:
		return nil, fmt.Errorf("failed to load status configuration: %w", err)
	case found && savedConfigs.Valid():
		statusConfigs = savedConfigs
	case found:
		log.Printf("Ignoring invalid stored status configuration")
	}

	return &snapshot{
		store:         store,
		projects:      projects,
		tasks:         tasks,
		theme:         theme,
		statusConfigs: statusConfigs,
		quarantined:   quarantined,
	}, nil
}

// State reports the load state
func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Err returns the error that failed the last load
func (w *Workspace) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

func (w *Workspace) ready() error {
	if w.state == StateReady {
		return nil
	}
	if w.err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, w.err)
	}
	return ErrNotReady
}

func (w *Workspace) Projects() []models.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.projects)
}

func (w *Workspace) Tasks() []models.Task {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.tasks)
}

func (w *Workspace) Task(id string) (models.Task, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i := w.taskIndex(id); i >= 0 {
		return w.tasks[i], true
	}
	return models.Task{}, false
}

// ActiveProject returns the selected project, if any
func (w *Workspace) ActiveProject() (models.Project, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if i := w.projectIndex(w.activeProjectID); i >= 0 {
		return w.projects[i], true
	}
	return models.Project{}, false
}

// SelectProject makes an existing project the active one
func (w *Workspace) SelectProject(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return err
	}
	if w.projectIndex(id) < 0 {
		return ErrProjectNotFound
	}
	w.activeProjectID = id
	return nil
}

// VisibleTasks returns the tasks of the active project
func (w *Workspace) VisibleTasks() []models.Task {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visibleTasks()
}

func (w *Workspace) visibleTasks() []models.Task {
	visible := make([]models.Task, 0)
	if w.activeProjectID == "" {
		return visible
	}
	for _, task := range w.tasks {
		if task.ProjectID == w.activeProjectID {
			visible = append(visible, task)
		}
	}
	return visible
}

// BoardView is a consistent read of the active project and its tasks
type BoardView struct {
	ProjectID     string
	Tasks         []models.Task
	StatusConfigs models.StatusConfigs
}

// Board returns the active project id, its tasks and the column
// configuration from a single read of the workspace
func (w *Workspace) Board() BoardView {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return BoardView{
		ProjectID:     w.activeProjectID,
		Tasks:         w.visibleTasks(),
		StatusConfigs: w.statusConfigs.Clone(),
	}
}

// Columns groups the view's tasks by status
func (v BoardView) Columns() map[models.TaskStatus][]models.Task {
	columns := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		columns[status] = []models.Task{}
	}
	for _, task := range v.Tasks {
		columns[task.Status] = append(columns[task.Status], task)
	}
	return columns
}

// Matching narrows the view's tasks to the given ids, keeping board order
func (v BoardView) Matching(ids []string) []models.Task {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	matched := make([]models.Task, 0, len(ids))
	for _, task := range v.Tasks {
		if wanted[task.ID] {
			matched = append(matched, task)
		}
	}
	return matched
}

// TasksByStatus groups the visible tasks into board columns
func (w *Workspace) TasksByStatus() map[models.TaskStatus][]models.Task {
	return w.Board().Columns()
}

// ProjectList returns the projects and the active project id from a single
// read of the workspace
func (w *Workspace) ProjectList() ([]models.Project, string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.projects), w.activeProjectID
}

// Notifications returns overdue tasks and those due today or tomorrow
func (w *Workspace) Notifications() []models.Task {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return DueSoon(w.tasks, w.now())
}

func (w *Workspace) Theme() models.Theme {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.theme
}

func (w *Workspace) StatusConfigs() models.StatusConfigs {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.statusConfigs.Clone()
}

// Quarantined lists stored tasks left out of the workspace because they
// could not be migrated
func (w *Workspace) Quarantined() []QuarantinedTask {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.quarantined)
}

// AddProject creates a project and makes it active
func (w *Workspace) AddProject(ctx context.Context, name string) (models.Project, error) {
	name, err := validateProjectName(name)
	if err != nil {
		return models.Project{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		ID:   w.ids.Next(constants.ProjectIDPrefix),
		Name: name,
	}
	if err := w.store.Projects.Add(ctx, &project); err != nil {
		return models.Project{}, fmt.Errorf("failed to add project: %w", err)
	}

	w.projects = append(w.projects, project)
	w.activeProjectID = project.ID
	return project, nil
}

// RenameProject changes a project's name
func (w *Workspace) RenameProject(ctx context.Context, id, name string) (models.Project, error) {
	name, err := validateProjectName(name)
	if err != nil {
		return models.Project{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return models.Project{}, err
	}

	i := w.projectIndex(id)
	if i < 0 {
		return models.Project{}, ErrProjectNotFound
	}

	project := w.projects[i]
	project.Name = name
	if err := w.store.Projects.Put(ctx, &project); err != nil {
		return models.Project{}, fmt.Errorf("failed to rename project: %w", err)
	}

	w.projects[i] = project
	return project, nil
}

// DeleteProject deletes a project together with its tasks. If it was active,
// the first remaining project becomes active.
func (w *Workspace) DeleteProject(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return err
	}

	if w.projectIndex(id) < 0 {
		return ErrProjectNotFound
	}

	if _, err := w.store.Projects.DeleteWithTasks(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	w.projects = slices.DeleteFunc(slices.Clone(w.projects), func(p models.Project) bool {
		return p.ID == id
	})
	w.tasks = slices.DeleteFunc(slices.Clone(w.tasks), func(t models.Task) bool {
		return t.ProjectID == id
	})
	w.quarantined = slices.DeleteFunc(slices.Clone(w.quarantined), func(q QuarantinedTask) bool {
		return q.Task.ProjectID == id
	})

	if w.activeProjectID == id {
		w.activeProjectID = ""
		if len(w.projects) > 0 {
			w.activeProjectID = w.projects[0].ID
		}
	}
	return nil
}

// AddTask creates a task in the named project, or in the active one
func (w *Workspace) AddTask(ctx context.Context, input CreateTaskInput) (models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return models.Task{}, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusToDo
	}
	if !input.Status.Valid() {
		return models.Task{}, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return models.Task{}, ErrInvalidPriority
	}
	dueDate, err := normalizeDueDate(input.DueDate)
	if err != nil {
		return models.Task{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return models.Task{}, err
	}

	projectID := input.ProjectID
	if projectID == "" {
		projectID = w.activeProjectID
	}
	if projectID == "" {
		return models.Task{}, ErrNoActiveProject
	}
	if w.projectIndex(projectID) < 0 {
		return models.Task{}, ErrProjectNotFound
	}

	now := w.now().UTC()
	task := models.Task{
		ID:          w.ids.Next(constants.TaskIDPrefix),
		ProjectID:   projectID,
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := w.store.Tasks.Add(ctx, &task); err != nil {
		return models.Task{}, fmt.Errorf("failed to add task: %w", err)
	}

	w.tasks = append(w.tasks, task)
	return task, nil
}

// UpdateTask edits a task and stamps its update time
func (w *Workspace) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return models.Task{}, err
	}

	i := w.taskIndex(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}

	task := w.tasks[i]
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		return models.Task{}, ErrProjectChangeRejected
	}
	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return models.Task{}, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return models.Task{}, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return models.Task{}, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		dueDate, err := normalizeDueDate(input.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		task.DueDate = dueDate
	}
	task.UpdatedAt = w.stamp(task.UpdatedAt)

	if err := w.store.Tasks.Put(ctx, &task); err != nil {
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	w.tasks = slices.Clone(w.tasks)
	w.tasks[i] = task
	return task, nil
}

// UpdateTaskStatus moves a task to another board column
func (w *Workspace) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	return w.UpdateTask(ctx, id, UpdateTaskInput{Status: &status})
}

// DeleteTask deletes a single task
func (w *Workspace) DeleteTask(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return err
	}

	if w.taskIndex(id) < 0 {
		return ErrTaskNotFound
	}

	if err := w.store.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	w.tasks = slices.DeleteFunc(slices.Clone(w.tasks), func(t models.Task) bool {
		return t.ID == id
	})
	return nil
}

// SetTheme persists the theme preference
func (w *Workspace) SetTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return err
	}

	if err := w.store.Settings.PutSetting(ctx, models.SettingTheme, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	w.theme = theme
	return nil
}

// SetStatusConfigs persists the board column display configuration
func (w *Workspace) SetStatusConfigs(ctx context.Context, configs models.StatusConfigs) error {
	if !configs.Valid() {
		return ErrInvalidStatusConfigs
	}
	configs = configs.Clone()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ready(); err != nil {
		return err
	}

	if err := w.store.Settings.PutSetting(ctx, models.SettingStatusConfigs, configs); err != nil {
		return fmt.Errorf("failed to save status configuration: %w", err)
	}
	w.statusConfigs = configs
	return nil
}

// stamp returns the current time, nudged forward if the clock has not moved
// past prev
func (w *Workspace) stamp(prev time.Time) time.Time {
	now := w.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (w *Workspace) projectIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(w.projects, func(p models.Project) bool { return p.ID == id })
}

func (w *Workspace) taskIndex(id string) int {
	return slices.IndexFunc(w.tasks, func(t models.Task) bool { return t.ID == id })
}

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrProjectNameRequired
	}
	if len([]rune(name)) > constants.MaxProjectNameLength {
		return "", ErrProjectNameTooLong
	}
	return name, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if len([]rune(title)) > constants.MaxTaskTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func normalizeDueDate(dueDate *string) (*string, error) {
	if dueDate == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*dueDate)
	if trimmed == "" {
		return nil, nil
	}
	if !models.ValidDate(trimmed) {
		return nil, ErrInvalidDueDate
	}
	return &trimmed, nil
}
