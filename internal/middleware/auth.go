package middleware

import (
	"net/http"
	"strings"

	"publazer/internal/apperrors"
	"publazer/internal/auth"
	"publazer/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID = "user_id"
	KeyRole   = "user_role"
	KeyEmail  = "user_email"
	KeyClaims = "claims"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// on the context. Revoked token ids are rejected.
func AuthMiddleware(jwtManager *auth.JWTManager, revoker *auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Authorization token required")
			return
		}

		claims, err := jwtManager.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid or expired token")
			return
		}
		if revoker.IsRevoked(c.Request.Context(), claims.ID) {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Token has been revoked")
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, apperrors.CodeForbidden, "Insufficient permissions")
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

func FacultyOrAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleFaculty, models.RoleAdmin)
}

func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(KeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(KeyRole)
}

func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
