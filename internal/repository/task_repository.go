package repository

import (
	"context"

	"github.com/yukikurage/kanban-board/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	*GormCollection[models.Task]
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{
		GormCollection: NewCollection[models.Task](db, CollectionTasks, map[string]string{
			IndexProjectID: "project_id",
		}),
		db: db,
	}
}

// ListByProject returns the tasks of one project ordered by id
func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, wrapStoreError("listByProject", CollectionTasks, err)
	}
	return tasks, nil
}

// DeleteOrphans removes tasks whose project no longer exists
func (r *GormTaskRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	projectIDs := r.db.Model(&models.Project{}).Select("id")

	result := r.db.WithContext(ctx).
		Where("project_id NOT IN (?)", projectIDs).
		Delete(&models.Task{})
	if result.Error != nil {
		return 0, wrapStoreError("deleteOrphans", CollectionTasks, result.Error)
	}
	return result.RowsAffected, nil
}
