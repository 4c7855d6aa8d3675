package repository

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownIndex is returned by DeleteByIndex for an index the collection
// does not declare.
var ErrUnknownIndex = errors.New("unknown index")

// Record is implemented by every persisted model.
type Record interface {
	RecordID() string
}

// GormCollection is a GORM implementation of Collection
type GormCollection[T Record] struct {
	db      *gorm.DB
	name    string
	indexes map[string]string
}

// NewCollection creates a Collection named name. indexes maps index names to
// the columns they cover.
func NewCollection[T Record](db *gorm.DB, name string, indexes map[string]string) *GormCollection[T] {
	return &GormCollection[T]{
		db:      db,
		name:    name,
		indexes: indexes,
	}
}

// GetAll returns every record ordered by id
func (c *GormCollection[T]) GetAll(ctx context.Context) ([]T, error) {
	items := []T{}
	if err := c.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, c.fail("getAll", err)
	}
	return items, nil
}

// Get finds a record by id
func (c *GormCollection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var item T
	result := c.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&item)
	if result.Error != nil {
		return item, false, c.fail("get", result.Error)
	}
	return item, result.RowsAffected > 0, nil
}

// Add inserts a new record
func (c *GormCollection[T]) Add(ctx context.Context, item *T) error {
	id := (*item).RecordID()
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return c.fail("add", err)
	}
	return nil
}

// Put upserts a record by id
func (c *GormCollection[T]) Put(ctx context.Context, item *T) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(item).Error
	if err != nil {
		return c.fail("put", err)
	}
	return nil
}

// Delete removes a record by id
func (c *GormCollection[T]) Delete(ctx context.Context, id string) error {
	if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return c.fail("delete", err)
	}
	return nil
}

// DeleteByIndex removes every record matching value on the index. It runs as
// a single DELETE statement inside GORM's write transaction, so a failure
// leaves every matching record in place.
func (c *GormCollection[T]) DeleteByIndex(ctx context.Context, index, value string) (int64, error) {
	column, ok := c.indexes[index]
	if !ok {
		return 0, fmt.Errorf("%w %q on %s", ErrUnknownIndex, index, c.name)
	}

	result := c.db.WithContext(ctx).Where(column+" = ?", value).Delete(new(T))
	if result.Error != nil {
		return 0, c.fail("deleteByIndex", result.Error)
	}
	return result.RowsAffected, nil
}

func (c *GormCollection[T]) fail(op string, err error) error {
	return wrapStoreError(op, c.name, err)
}

func wrapStoreError(op, collection string, err error) error {
	var storeErr *apierrors.StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	kind := apierrors.ErrTransactionAborted
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		kind = apierrors.ErrDuplicateKey
	}
	return apierrors.NewStoreError(op, collection, kind, err)
}
