package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/accountsvc/backend/internal/model"
	"github.com/accountsvc/backend/internal/service"
)

const (
	authUserKey     = "auth_user"
	requestIDHeader = "X-Request-ID"
)

// AuthMiddleware extracts the Bearer token, resolves it to a live user, and
// stores the user in the request context. Resolution happens against the
// store on every request, so a deactivated user is rejected even when their
// token has not expired yet.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Not authenticated"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Not authenticated"})
			return
		}

		user, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			// A subject that no longer resolves is indistinguishable from a
			// bad token to the caller.
			if errors.Is(err, service.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Could not validate credentials"})
				return
			}
			status, body := errorResponseFor(err)
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func errorResponseFor(err error) (int, model.ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusBadRequest, model.ErrorResponse{Detail: "Inactive user"}
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, model.ErrorResponse{Detail: "Could not validate credentials"}
	default:
		return http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"}
	}
}

// SuperuserMiddleware gates superuser-only endpoints. It must run after
// AuthMiddleware.
func SuperuserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireSuperuser(GetAuthUser(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{Detail: "Not enough permissions"})
			return
		}
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.User {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

// RequestIDMiddleware tags every request with an id for log correlation,
// honoring an id supplied by an upstream proxy.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	allowAll := false
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAll = true
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, allowed := originMap[origin]
			if allowAll || allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
