package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/middleware"
	"github.com/yukikurage/kanban-board/internal/services"
)

// Dependencies are the services the board API is built on
type Dependencies struct {
	Workspace *services.Workspace
	Auth      *services.AuthService
	Assistant services.Assistant
}

// RegisterRoutes mounts the board API on r. Session middleware must already
// be installed.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	projectHandler := NewProjectHandler(deps.Workspace)
	taskHandler := NewTaskHandler(deps.Workspace)
	settingsHandler := NewSettingsHandler(deps.Workspace)
	assistantHandler := NewAssistantHandler(deps.Assistant, deps.Workspace)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		state := deps.Workspace.State()
		if state == services.StateFailed {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unavailable",
				"workspace": state.String(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"workspace": state.String(),
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(deps.Auth), authHandler.Me)
		}

		board := api.Group("")
		board.Use(middleware.RequireAuth(deps.Auth), middleware.RequireWorkspaceReady(deps.Workspace))

		projects := board.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.PUT("/active", projectHandler.SelectProject)
			projects.PATCH("/:id", projectHandler.RenameProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		tasks := board.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/quarantined", taskHandler.ListQuarantined)
			tasks.GET("/:id", middleware.RequireTask(deps.Workspace), taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		board.GET("/board", taskHandler.GetBoard)
		board.GET("/notifications", taskHandler.ListNotifications)

		settings := board.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PUT("/theme", settingsHandler.UpdateTheme)
			settings.PUT("/status-configs", settingsHandler.UpdateStatusConfigs)
		}

		assistant := board.Group("/assistant")
		{
			assistant.POST("/parse", assistantHandler.ParseTask)
			assistant.POST("/subtasks", assistantHandler.GenerateSubTasks)
			assistant.POST("/search", assistantHandler.SearchTasks)
			assistant.GET("/briefing", assistantHandler.DailyBriefing)
		}
	}
}
