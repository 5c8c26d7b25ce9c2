package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/auth"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/response"
)

const (
	// ContextUserIDKey is the gin context key holding the authenticated user id.
	ContextUserIDKey = "auth.user_id"
	// ContextRolesKey is the gin context key holding the authenticated user's roles.
	ContextRolesKey = "auth.roles"
)

// RequireAuth validates the bearer token and stores the caller's identity on
// the request context.
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			response.Error(c, apperrors.ErrUnauthorized.WithInternal(err))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole ensures the authenticated caller holds the given role. It must
// run after RequireAuth.
func RequireRole(roleID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, ok := c.Get(ContextRolesKey)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		list, _ := roles.([]string)
		for _, role := range list {
			if role == roleID {
				c.Next()
				return
			}
		}

		response.Error(c, apperrors.ErrForbidden)
		c.Abort()
	}
}

// UserID returns the authenticated user id stored by RequireAuth.
func UserID(c *gin.Context) string {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
