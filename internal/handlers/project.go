package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/dto"
	"github.com/yukikurage/kanban-board/internal/services"
)

type ProjectHandler struct {
	workspace *services.Workspace
}

func NewProjectHandler(workspace *services.Workspace) *ProjectHandler {
	return &ProjectHandler{
		workspace: workspace,
	}
}

func (h *ProjectHandler) activeID() string {
	_, activeID := h.workspace.ProjectList()
	return activeID
}

func (h *ProjectHandler) listResponse() dto.ProjectListResponse {
	return dto.ToProjectListResponse(h.workspace.ProjectList())
}

// ListProjects returns every project and the active one
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.listResponse())
}

// CreateProject creates a project and switches the board to it
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.workspace.AddProject(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(project, h.activeID()))
}

func (h *ProjectHandler) RenameProject(c *gin.Context) {
	var req dto.RenameProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.workspace.RenameProject(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(project, h.activeID()))
}

// DeleteProject deletes a project with all of its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.workspace.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.listResponse())
}

// SelectProject changes the active project
func (h *ProjectHandler) SelectProject(c *gin.Context) {
	var req dto.SelectProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.workspace.SelectProject(req.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.listResponse())
}
