package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yukikurage/kanban-board/internal/models"
	"gorm.io/gorm"
)

// ErrSchemaTooNew is returned when the stored schema was written by a newer
// build than the one opening it.
var ErrSchemaTooNew = errors.New("stored schema version is newer than supported")

// SchemaVersion is the single-row record of the applied schema version.
type SchemaVersion struct {
	ID        uint `gorm:"primarykey"`
	Version   int  `gorm:"not null"`
	UpdatedAt time.Time
}

type upgrade struct {
	version int
	name    string
	apply   func(tx *gorm.DB) error
}

// upgrades are additive only; AutoMigrate never drops tables or columns.
var upgrades = []upgrade{
	{
		version: 1,
		name:    "projects and tasks",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Project{}, &models.Task{})
		},
	},
	{
		version: 2,
		name:    "settings",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Setting{})
		},
	},
}

// LatestVersion is the highest schema version this build knows how to create.
func LatestVersion() int {
	return upgrades[len(upgrades)-1].version
}

// requiredIndexes lists the secondary indexes the record store relies on.
var requiredIndexes = []struct {
	model any
	name  string
}{
	{&models.Task{}, "idx_tasks_project_id"},
}

// Migrate brings db up to targetVersion and returns the version now stored.
func Migrate(ctx context.Context, db *gorm.DB, targetVersion int) (int, error) {
	if targetVersion < 1 || targetVersion > LatestVersion() {
		return 0, fmt.Errorf("unknown schema version %d", targetVersion)
	}

	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaVersion{}); err != nil {
		return 0, fmt.Errorf("failed to prepare schema version table: %w", err)
	}

	current, err := storedVersion(db)
	if err != nil {
		return 0, err
	}
	if current > targetVersion {
		return 0, fmt.Errorf("%w: stored %d, target %d", ErrSchemaTooNew, current, targetVersion)
	}

	if current < targetVersion {
		log.Printf("Upgrading schema from version %d to %d", current, targetVersion)
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, u := range upgrades {
				if u.version <= current || u.version > targetVersion {
					continue
				}
				if err := u.apply(tx); err != nil {
					return fmt.Errorf("failed to apply schema version %d (%s): %w", u.version, u.name, err)
				}
				log.Printf("Applied schema version %d (%s)", u.version, u.name)
			}
			return tx.Save(&SchemaVersion{ID: 1, Version: targetVersion}).Error
		})
		if err != nil {
			return 0, err
		}
		current = targetVersion
	}

	if err := EnsureIndexes(db); err != nil {
		return 0, err
	}

	return current, nil
}

func storedVersion(db *gorm.DB) (int, error) {
	var row SchemaVersion
	err := db.Limit(1).Find(&row, 1).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return row.Version, nil
}

// EnsureIndexes recreates any required index that has gone missing.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range requiredIndexes {
		if !migrator.HasTable(idx.model) {
			continue
		}
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Printf("Recreated missing index %s", idx.name)
	}

	return nil
}
