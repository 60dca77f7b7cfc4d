package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	tokenKey        = "session_token"
)

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// bearerToken accepts both "Bearer <token>" and a bare token.
func bearerToken(header string) string {
	if len(header) >= len(common.BearerPrefix) && strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(header[len(common.BearerPrefix):])
	}
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, strings.TrimSpace(common.BearerPrefix)) {
		return ""
	}
	return header
}

// authRequired resolves the session token to an identity and stores it in
// the gin context. Handlers never read the owner from the request.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if token == "" {
			s.abortWithError(c, common.ErrorUnauthorized)
			return
		}

		identity, err := s.identities.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.Set(common.IdentityContextKey, identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func identityFrom(c *gin.Context) string {
	return c.GetString(common.IdentityContextKey)
}
