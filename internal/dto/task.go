package dto

import (
	"time"

	"github.com/yukikurage/kanban-board/internal/models"
	"github.com/yukikurage/kanban-board/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"projectId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"dueDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type ProjectListResponse struct {
	Projects        []ProjectDTO `json:"projects"`
	ActiveProjectID string       `json:"activeProjectId"`
}

type TaskListResponse struct {
	ProjectID string    `json:"projectId"`
	Tasks     []TaskDTO `json:"tasks"`
}

// BoardColumnDTO is one status column of the board
type BoardColumnDTO struct {
	Status models.TaskStatus   `json:"status"`
	Config models.StatusConfig `json:"config"`
	Tasks  []TaskDTO           `json:"tasks"`
}

type BoardResponse struct {
	ProjectID string           `json:"projectId"`
	Columns   []BoardColumnDTO `json:"columns"`
}

type SettingsDTO struct {
	Theme         models.Theme         `json:"theme"`
	StatusConfigs models.StatusConfigs `json:"statusConfigs"`
}

type QuarantinedTaskDTO struct {
	Task   TaskDTO `json:"task"`
	Reason string  `json:"reason"`
}

type SubTasksResponse struct {
	SubTasks []string `json:"subTasks"`
}

type SearchResponse struct {
	MatchingTaskIDs []string  `json:"matchingTaskIds"`
	Tasks           []TaskDTO `json:"tasks"`
}

type BriefingResponse struct {
	Briefing string `json:"briefing"`
}

// ToTaskDTO converts a task model to DTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}

func ToProjectDTO(project models.Project, activeID string) ProjectDTO {
	return ProjectDTO{
		ID:     project.ID,
		Name:   project.Name,
		Active: project.ID == activeID,
	}
}

func ToProjectListResponse(projects []models.Project, activeID string) ProjectListResponse {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p, activeID)
	}
	return ProjectListResponse{Projects: out, ActiveProjectID: activeID}
}

// ToBoardResponse lays the grouped tasks out in status order
func ToBoardResponse(projectID string, columns map[models.TaskStatus][]models.Task, configs models.StatusConfigs) BoardResponse {
	board := BoardResponse{
		ProjectID: projectID,
		Columns:   make([]BoardColumnDTO, 0, len(models.TaskStatuses)),
	}
	for _, status := range models.TaskStatuses {
		board.Columns = append(board.Columns, BoardColumnDTO{
			Status: status,
			Config: configs[status],
			Tasks:  ToTaskDTOs(columns[status]),
		})
	}
	return board
}

func ToQuarantinedTaskDTOs(items []services.QuarantinedTask) []QuarantinedTaskDTO {
	out := make([]QuarantinedTaskDTO, len(items))
	for i, item := range items {
		out[i] = QuarantinedTaskDTO{Task: ToTaskDTO(item.Task), Reason: item.Reason}
	}
	return out
}
