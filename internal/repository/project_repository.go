package repository

import (
	"context"

	"github.com/yukikurage/kanban-board/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	*GormCollection[models.Project]
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{
		GormCollection: NewCollection[models.Project](db, CollectionProjects, nil),
		db:             db,
	}
}

// DeleteWithTasks deletes a project and its tasks in one transaction, tasks
// first.
func (r *GormProjectRepository) DeleteWithTasks(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := NewTaskRepository(tx).DeleteByIndex(ctx, IndexProjectID, id)
		if err != nil {
			return err
		}

		if err := NewProjectRepository(tx).Delete(ctx, id); err != nil {
			return err
		}

		removed = n
		return nil
	})
	if err != nil {
		return 0, wrapStoreError("deleteWithTasks", CollectionProjects, err)
	}
	return removed, nil
}
