package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/dto"
	"github.com/yukikurage/kanban-board/internal/services"
)

type SettingsHandler struct {
	workspace *services.Workspace
}

func NewSettingsHandler(workspace *services.Workspace) *SettingsHandler {
	return &SettingsHandler{
		workspace: workspace,
	}
}

func (h *SettingsHandler) current() dto.SettingsDTO {
	return dto.SettingsDTO{
		Theme:         h.workspace.Theme(),
		StatusConfigs: h.workspace.StatusConfigs(),
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.current())
}

func (h *SettingsHandler) UpdateTheme(c *gin.Context) {
	var req dto.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.workspace.SetTheme(c.Request.Context(), req.Theme); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.current())
}

// UpdateStatusConfigs replaces the display configuration of every column
func (h *SettingsHandler) UpdateStatusConfigs(c *gin.Context) {
	var req dto.StatusConfigsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.workspace.SetStatusConfigs(c.Request.Context(), req.StatusConfigs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.current())
}
