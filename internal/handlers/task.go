package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/dto"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/middleware"
	"github.com/yukikurage/kanban-board/internal/services"
)

type TaskHandler struct {
	workspace *services.Workspace
}

func NewTaskHandler(workspace *services.Workspace) *TaskHandler {
	return &TaskHandler{
		workspace: workspace,
	}
}

// ListTasks returns the tasks of the active project
func (h *TaskHandler) ListTasks(c *gin.Context) {
	view := h.workspace.Board()

	c.JSON(http.StatusOK, dto.TaskListResponse{
		ProjectID: view.ProjectID,
		Tasks:     dto.ToTaskDTOs(view.Tasks),
	})
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a task in the active project unless projectId is given
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.workspace.AddTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(task))
}

// UpdateTask updates the provided fields of a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.workspace.UpdateTask(c.Request.Context(), c.Param("id"), services.UpdateTaskInput{
		ProjectID:    req.ProjectID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// UpdateTaskStatus moves a task to another column
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.workspace.UpdateTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.workspace.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// GetBoard returns the active project's tasks grouped by status
func (h *TaskHandler) GetBoard(c *gin.Context) {
	view := h.workspace.Board()

	c.JSON(http.StatusOK, dto.ToBoardResponse(view.ProjectID, view.Columns(), view.StatusConfigs))
}

// ListNotifications returns overdue tasks and tasks due today or tomorrow
func (h *TaskHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(h.workspace.Notifications()),
	})
}

// ListQuarantined returns stored tasks that could not be loaded
func (h *TaskHandler) ListQuarantined(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToQuarantinedTaskDTOs(h.workspace.Quarantined()),
	})
}
