package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
)

// MigrateTask normalizes a task written before timestamps were stored.
// Legacy ids have the form "task-<unix ms>", so the creation instant is
// recovered from the id suffix. It reports whether anything changed and is
// idempotent. A record whose id carries no usable timestamp is rejected with
// ErrMigrationAmbiguous and must be left untouched by the caller.
func MigrateTask(task models.Task) (models.Task, bool, error) {
	if task.CreatedAt.IsZero() {
		created, err := creationTimeFromID(task.ID)
		if err != nil {
			return task, false, err
		}
		task.CreatedAt = created
		task.UpdatedAt = created
		return task, true, nil
	}

	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
		return task, true, nil
	}

	return task, false, nil
}

func creationTimeFromID(id string) (time.Time, error) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return time.Time{}, fmt.Errorf("%w: task %q has no timestamp suffix", apierrors.ErrMigrationAmbiguous, id)
	}

	ms, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, fmt.Errorf("%w: task %q has a non-numeric timestamp suffix", apierrors.ErrMigrationAmbiguous, id)
	}

	return time.UnixMilli(ms).UTC(), nil
}
