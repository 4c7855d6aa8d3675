package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one connection.
type Store struct {
	db       *gorm.DB
	Projects ProjectRepository
	Tasks    TaskRepository
	Settings SettingsRepository
}

// NewStore creates the repositories backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
		Settings: NewSettingsRepository(db),
	}
}

// Atomically runs fn against repositories bound to a single transaction.
// Any error returned by fn rolls the whole unit back.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(NewStore(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return wrapStoreError("transaction", "store", err)
}
