package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/services"
)

// RequireWorkspaceReady rejects requests until the workspace has loaded
func RequireWorkspaceReady(ws *services.Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ws.State() != services.StateReady {
			apierrors.ServiceUnavailable(c, "The board is "+ws.State().String())
			c.Abort()
			return
		}

		c.Next()
	}
}
