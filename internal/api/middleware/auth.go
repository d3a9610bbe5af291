package middleware

import (
	"net/http"
	"strings"

	"gatepass-backend/pkg/jwt"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set from token claims.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

func AuthMiddleware(jwtUtil *jwt.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authorization header required", nil)
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the claims when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalAuth(jwtUtil *jwt.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}

// tokenFromRequest accepts "Bearer <token>", a bare token, or a token query
// parameter for browser websocket clients that cannot set headers.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token")
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
}
