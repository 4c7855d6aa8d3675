package dto

import "github.com/yukikurage/kanban-board/internal/models"

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type SelectProjectRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}

type CreateTaskRequest struct {
	ProjectID   string              `json:"projectId"`
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"dueDate"`
}

// UpdateTaskRequest carries only the fields to change. Send
// "clearDueDate": true to remove the due date.
type UpdateTaskRequest struct {
	ProjectID    *string              `json:"projectId"`
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Status       *models.TaskStatus   `json:"status"`
	Priority     *models.TaskPriority `json:"priority"`
	DueDate      *string              `json:"dueDate"`
	ClearDueDate bool                 `json:"clearDueDate"`
}

type UpdateStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

type ThemeRequest struct {
	Theme models.Theme `json:"theme" binding:"required"`
}

type StatusConfigsRequest struct {
	StatusConfigs models.StatusConfigs `json:"statusConfigs" binding:"required"`
}

type ParseTaskRequest struct {
	Text string `json:"text" binding:"required"`
}

type SubTasksRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}
