package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/dto"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/services"
)

type AssistantHandler struct {
	assistant services.Assistant
	workspace *services.Workspace
}

func NewAssistantHandler(assistant services.Assistant, workspace *services.Workspace) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		workspace: workspace,
	}
}

func (h *AssistantHandler) available(c *gin.Context) bool {
	if h.assistant == nil {
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return false
	}
	return true
}

// ParseTask turns free text into a task draft. Nothing is saved.
func (h *AssistantHandler) ParseTask(c *gin.Context) {
	var req dto.ParseTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.available(c) {
		return
	}

	parsed, err := h.assistant.ParseTask(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, parsed)
}

func (h *AssistantHandler) GenerateSubTasks(c *gin.Context) {
	var req dto.SubTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.available(c) {
		return
	}

	subTasks, err := h.assistant.GenerateSubTasks(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubTasksResponse{SubTasks: subTasks})
}

// SearchTasks filters the active project's tasks with a natural-language query
func (h *AssistantHandler) SearchTasks(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.available(c) {
		return
	}

	view := h.workspace.Board()
	ids, err := h.assistant.FilterTasks(c.Request.Context(), req.Query, view.Tasks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		MatchingTaskIDs: ids,
		Tasks:           dto.ToTaskDTOs(view.Matching(ids)),
	})
}

// DailyBriefing summarizes the active project's tasks
func (h *AssistantHandler) DailyBriefing(c *gin.Context) {
	if !h.available(c) {
		return
	}

	briefing, err := h.assistant.DailyBriefing(c.Request.Context(), h.workspace.VisibleTasks())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BriefingResponse{Briefing: briefing})
}
