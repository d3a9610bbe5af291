package handlers

import (
	"net/http"

	"gatepass-backend/internal/models"
	"gatepass-backend/internal/services"
	"gatepass-backend/pkg/jwt"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	manager   *services.PassManager
	jwtUtil   *jwt.JWTUtil
	validator *validator.Validate
}

// AuthResponse carries the session token and where the client should land.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	View  models.View  `json:"view"`
}

func NewAuthHandler(manager *services.PassManager, jwtUtil *jwt.JWTUtil) *AuthHandler {
	return &AuthHandler{
		manager:   manager,
		jwtUtil:   jwtUtil,
		validator: validator.New(),
	}
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	user, err := h.manager.Register(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, "Registration failed", err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, "Registration successful", user, models.LandingView(user.Role))
}

// Login handles email-only authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	user, view, err := h.manager.Login(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, "Authentication failed", err)
		return
	}

	h.respondWithToken(c, http.StatusOK, "Login successful", user, view)
}

// Logout clears the persisted session. Tokens are stateless and simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.manager.Logout(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Logout successful", nil)
}

// Me returns the current user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireActor(c, h.manager)
	if !ok {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}

// RefreshToken reissues a token that is close to expiry
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" validate:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	token, err := h.jwtUtil.RefreshToken(req.Token)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Token refresh failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", map[string]string{"token": token})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, message string, user *models.User, view models.View) {
	token, err := h.jwtUtil.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	utils.SuccessResponse(c, status, message, AuthResponse{
		Token: token,
		User:  user,
		View:  view,
	})
}
