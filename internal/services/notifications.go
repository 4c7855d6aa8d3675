package services

import (
	"sort"
	"time"

	"github.com/yukikurage/kanban-board/internal/models"
)

// DueSoon returns the tasks due before the day after tomorrow, which covers
// overdue tasks and those due today or tomorrow. Dates are read in now's
// location. The result is sorted by due date; tasks without a usable due date
// are left out.
func DueSoon(tasks []models.Task, now time.Time) []models.Task {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, 2)

	type dated struct {
		task models.Task
		due  time.Time
	}

	matches := make([]dated, 0)
	for _, task := range tasks {
		if !task.HasDueDate() {
			continue
		}
		due, err := time.ParseInLocation(models.DateLayout, *task.DueDate, now.Location())
		if err != nil {
			continue
		}
		if due.Before(cutoff) {
			matches = append(matches, dated{task: task, due: due})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].due.Before(matches[j].due)
	})

	out := make([]models.Task, len(matches))
	for i, m := range matches {
		out[i] = m.task
	}
	return out
}
