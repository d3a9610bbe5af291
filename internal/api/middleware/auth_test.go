package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatepass-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(jwtUtil *jwt.JWTUtil) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"email":   c.GetString(ContextEmail),
			"role":    c.GetString(ContextRole),
		})
	}

	router.GET("/protected", AuthMiddleware(jwtUtil), echo)
	router.GET("/optional", OptionalAuth(jwtUtil), echo)
	router.GET("/staff", AuthMiddleware(jwtUtil), RequireRole("ADMIN", "SECURITY"), echo)
	return router
}

func get(router http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtUtil := jwt.NewJWTUtil("test-secret", time.Hour)
	router := setupAuthRouter(jwtUtil)

	token, err := jwtUtil.GenerateToken("user-1", "jane@example.com", "VISITOR")
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"bearer token", "/protected", "Bearer " + token, http.StatusOK},
		{"bare token", "/protected", token, http.StatusOK},
		{"query token", "/protected?token=" + token, "", http.StatusOK},
		{"missing token", "/protected", "", http.StatusUnauthorized},
		{"garbage token", "/protected", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, tt.path, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
				assert.Contains(t, w.Body.String(), `"role":"VISITOR"`)
			}
		})
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := setupAuthRouter(jwt.NewJWTUtil("test-secret", time.Hour))

	token, err := jwt.NewJWTUtil("other-secret", time.Hour).GenerateToken("user-1", "a@b.com", "ADMIN")
	require.NoError(t, err)

	w := get(router, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestOptionalAuth(t *testing.T) {
	jwtUtil := jwt.NewJWTUtil("test-secret", time.Hour)
	router := setupAuthRouter(jwtUtil)

	w := get(router, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	token, err := jwtUtil.GenerateToken("user-2", "b@example.com", "SECURITY")
	require.NoError(t, err)
	w = get(router, "/optional", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-2"`)

	w = get(router, "/optional", "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtUtil := jwt.NewJWTUtil("test-secret", time.Hour)
	router := setupAuthRouter(jwtUtil)

	for role, status := range map[string]int{
		"ADMIN":    http.StatusOK,
		"SECURITY": http.StatusOK,
		"VISITOR":  http.StatusForbidden,
	} {
		t.Run(role, func(t *testing.T) {
			token, err := jwtUtil.GenerateToken("user-"+role, role+"@example.com", role)
			require.NoError(t, err)
			assert.Equal(t, status, get(router, "/staff", "Bearer "+token).Code)
		})
	}
}
