package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yukikurage/kanban-board/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrCorruptSetting = errors.New("stored setting cannot be decoded")
)

// GormSettingsRepository stores each preference as an {id, value} envelope
type GormSettingsRepository struct {
	settings *GormCollection[models.Setting]
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &GormSettingsRepository{
		settings: NewCollection[models.Setting](db, CollectionSettings, nil),
	}
}

// GetSetting loads a preference into dest
func (r *GormSettingsRepository) GetSetting(ctx context.Context, name models.SettingName, dest any) (bool, error) {
	if !name.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}

	setting, found, err := r.settings.Get(ctx, string(name))
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal([]byte(setting.Value), dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptSetting, name, err)
	}
	return true, nil
}

// PutSetting overwrites a preference
func (r *GormSettingsRepository) PutSetting(ctx context.Context, name models.SettingName, value any) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", name, err)
	}

	return r.settings.Put(ctx, &models.Setting{ID: string(name), Value: string(payload)})
}
