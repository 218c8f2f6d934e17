package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisdomindex/wealth_service/internal/api/middleware"
	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
)

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondAppError maps an error chain onto the standard error shape. AppError
// instances carry their own status and code; anything else is a 500.
func respondAppError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		var details map[string]interface{}
		if len(appErr.Details) > 0 {
			details = make(map[string]interface{}, len(appErr.Details))
			for k, v := range appErr.Details {
				details[k] = v
			}
		}
		respondError(c, appErr.StatusCode, appErr.Code, appErr.Message, details)
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message, details)
}

// clientID returns the authenticated household identifier.
func clientID(c *gin.Context) int64 {
	return middleware.ClientID(c)
}

// asOfDate resolves the evaluation date: the as_of query parameter when given
// (YYYY-MM-DD), otherwise the current UTC time. The bool is false when the
// parameter was present but malformed.
func asOfDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
