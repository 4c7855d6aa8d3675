package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of due dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Task timestamps are set by the workspace, never by gorm, so that legacy
// rows without a creation time stay recognizable.
type Task struct {
	ID          string       `gorm:"primarykey;type:varchar(64)" json:"id"`
	ProjectID   string       `gorm:"type:varchar(64);not null;index:idx_tasks_project_id" json:"projectId"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'ToDo'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	DueDate     *string      `gorm:"type:varchar(10)" json:"dueDate,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// HasDueDate reports whether the task carries a parseable due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && ValidDate(*t.DueDate)
}

func (t Task) RecordID() string { return t.ID }
