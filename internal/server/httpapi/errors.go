package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/gin-gonic/gin"
)

func statusFromError(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError logs err and answers with the mapped status. The body only
// ever carries the status text.
func (s *HTTPServer) abortWithError(c *gin.Context, err error) {
	code := statusFromError(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "request_id", c.GetString(requestIDKey), "error", err)
	} else {
		s.logger.Debug(c.Request.Context(), "request rejected", "request_id", c.GetString(requestIDKey), "status", code, "error", err)
	}
	s.abortWithStatus(c, code)
}

func (s *HTTPServer) abortWithStatus(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, api.ErrorResponse{Error: http.StatusText(code)})
}
