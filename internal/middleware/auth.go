package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/constants"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/services"
)

// RequireAuth checks if the session has logged in. It lets every request
// through when the board has no passphrase.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Enabled() {
			c.Set(constants.ContextKeyAuthed, true)
			c.Next()
			return
		}

		session := sessions.Default(c)
		if authed, _ := session.Get(constants.ContextKeyAuthed).(bool); !authed {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAuthed, true)
		c.Next()
	}
}

// IsAuthenticated reports whether RequireAuth admitted the request
func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(constants.ContextKeyAuthed)
}
