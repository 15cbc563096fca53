package handlers

import (
	"errors"
	"net/http"

	"practice-service/internal/repository"
	"practice-service/internal/service"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service and repository errors onto HTTP statuses.
func respondError(c *gin.Context, fallbackMessage string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.BadRequestResponse(c, verr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, service.ErrEmailTaken):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, repository.ErrPracticeClosed):
		utils.ConflictResponse(c, "This practice has already been submitted")
	case errors.Is(err, service.ErrRateLimited):
		utils.TooManyRequestsResponse(c, err.Error())
	case errors.Is(err, repository.ErrVersionConflict):
		utils.ErrorResponse(c, http.StatusConflict, "Progress was updated concurrently, please retry", nil)
	default:
		utils.InternalErrorResponse(c, fallbackMessage, err)
	}
}
