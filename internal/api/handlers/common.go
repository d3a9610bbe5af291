package handlers

import (
	"errors"
	"net/http"

	"gatepass-backend/internal/api/middleware"
	"gatepass-backend/internal/models"
	"gatepass-backend/internal/services"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

var errUnknownUser = errors.New("token refers to an unknown user")

// actorFromContext resolves the authenticated user. It returns nil with ok
// true for anonymous requests, and responds 401 with ok false when the token
// names a user that no longer exists.
func actorFromContext(c *gin.Context, manager *services.PassManager) (*models.User, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return nil, true
	}

	user, ok := manager.UserByID(userID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated", errUnknownUser)
		return nil, false
	}
	return user, true
}

// requireActor is actorFromContext for routes that need a user.
func requireActor(c *gin.Context, manager *services.PassManager) (*models.User, bool) {
	user, ok := actorFromContext(c, manager)
	if !ok {
		return nil, false
	}
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated", nil)
		return nil, false
	}
	return user, true
}

func respondServiceError(c *gin.Context, message string, err error) {
	switch {
	case utils.IsValidationError(err):
		utils.ValidationErrorResponse(c, err)
	case errors.Is(err, services.ErrLoginNotFound):
		utils.ErrorResponse(c, http.StatusUnauthorized, message, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusForbidden, message, err)
	case errors.Is(err, services.ErrPassNotFound), errors.Is(err, services.ErrUnknownView):
		utils.ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrRequestInProgress):
		utils.ErrorResponse(c, http.StatusConflict, message, err)
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrGuestDetailsRequired):
		utils.ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, services.ErrExternalService):
		utils.ErrorResponse(c, http.StatusBadGateway, message, err)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
