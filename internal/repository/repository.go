package repository

import (
	"context"

	"github.com/yukikurage/kanban-board/internal/models"
)

// Collection names as persisted.
const (
	CollectionProjects = "projects"
	CollectionTasks    = "tasks"
	CollectionSettings = "settings"
)

// IndexProjectID is the secondary index of tasks by owning project.
const IndexProjectID = "projectId"

// Collection is generic record access over one collection keyed by id.
// "Not found" is never an error; failures are *errors.StoreError.
type Collection[T any] interface {
	// GetAll returns every record ordered by id
	GetAll(ctx context.Context) ([]T, error)

	// Get returns the record with id and whether it exists
	Get(ctx context.Context, id string) (T, bool, error)

	// Add inserts item, failing with ErrDuplicateKey if the id is taken
	Add(ctx context.Context, item *T) error

	// Put inserts or replaces item
	Put(ctx context.Context, item *T) error

	// Delete removes the record with id if present
	Delete(ctx context.Context, id string) error

	// DeleteByIndex removes every record whose indexed field equals value,
	// all or nothing, and returns how many were removed
	DeleteByIndex(ctx context.Context, index, value string) (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Collection[models.Project]

	// DeleteWithTasks removes a project and all of its tasks atomically
	DeleteWithTasks(ctx context.Context, id string) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Collection[models.Task]

	// ListByProject returns the tasks of one project via the project index
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)

	// DeleteOrphans removes tasks whose project no longer exists
	DeleteOrphans(ctx context.Context) (int64, error)
}

// SettingsRepository defines single-value-per-key preference storage
type SettingsRepository interface {
	// GetSetting decodes the stored value of name into dest and reports
	// whether a value was stored
	GetSetting(ctx context.Context, name models.SettingName, dest any) (bool, error)

	// PutSetting overwrites the value stored under name
	PutSetting(ctx context.Context, name models.SettingName, value any) error
}
