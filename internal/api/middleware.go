// internal/api/middleware.go
package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/auth"
	"job-portal/internal/common/errors"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
)

const claimsKey = "claims"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latencyMs": elapsed.Milliseconds(),
			"clientIp":  c.ClientIP(),
		}
		if status >= 500 {
			s.logger.Warn("request completed", fields)
			return
		}
		s.logger.Debug("request completed", fields)
	}
}

// protect rejects requests without a valid, unrevoked session token.
func (s *Server) protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			fail(c, errors.NewUnauthenticatedError("You are not logged in! Please log in to get access."))
			return
		}

		claims, err := s.authenticate(c, token)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// checkUser attaches the caller's claims when a valid token is present and
// lets anonymous requests through.
func (s *Server) checkUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := s.authenticate(c, token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func restrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		for _, role := range roles {
			if claims != nil && claims.Role == role {
				c.Next()
				return
			}
		}
		fail(c, errors.NewForbiddenError("You do not have permission to perform this action"))
	}
}

func (s *Server) authenticate(c *gin.Context, token string) (*auth.Claims, error) {
	claims, err := s.deps.Tokens.Parse(token)
	if err != nil {
		return nil, errors.NewUnauthenticatedError("Invalid or expired token. Please log in again.")
	}

	if s.deps.Revocations != nil {
		revoked, err := s.deps.Revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errors.NewUnauthenticatedError("This session has been logged out. Please log in again.")
		}
	}

	if _, err := s.deps.Users.FindByID(c.Request.Context(), claims.UserID); err != nil {
		return nil, errors.NewUnauthenticatedError("The user belonging to this token no longer exists.")
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func viewerID(c *gin.Context) string {
	if claims := currentClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
