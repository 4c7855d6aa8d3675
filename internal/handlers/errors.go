package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/services"
)

var validationErrors = []error{
	services.ErrProjectNameRequired,
	services.ErrProjectNameTooLong,
	services.ErrTitleRequired,
	services.ErrTitleTooLong,
	services.ErrInvalidStatus,
	services.ErrInvalidPriority,
	services.ErrInvalidDueDate,
	services.ErrInvalidTheme,
	services.ErrInvalidStatusConfigs,
	services.ErrProjectChangeRejected,
	services.ErrNoActiveProject,
	services.ErrEmptyAIInput,
	services.ErrAIInputTooLong,
}

// respondError maps workspace, store and assistant errors onto API errors
func respondError(c *gin.Context, err error) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			apierrors.BadRequest(c, target.Error())
			return
		}
	}

	var aiErr *apierrors.AIServiceError
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotReady):
		apierrors.ServiceUnavailable(c, "The board is not loaded")
	case errors.Is(err, apierrors.ErrStoreUnavailable):
		log.Printf("Store unavailable: %v", err)
		apierrors.ServiceUnavailable(c, "Storage is unavailable")
	case errors.Is(err, apierrors.ErrDuplicateKey):
		apierrors.Conflict(c, "A record with this id already exists")
	case errors.As(err, &aiErr):
		apierrors.AssistantFailure(c, aiErr.Message)
	case apierrors.IsStorageFailure(err):
		log.Printf("Storage failure: %v", err)
		apierrors.StorageFailure(c, "")
	default:
		log.Printf("Unexpected error: %v", err)
		apierrors.InternalError(c, "")
	}
}

// FieldError names a request field that failed a binding rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// respondBindError reports a request body that could not be bound, listing
// the failed fields when validation rejected it
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag()}
	}
	apierrors.BadRequestWithDetails(c, "Invalid request body", fields)
}
