package handler

import (
	"net/http"

	"centrale/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewAuthHandler(users *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("Login failed",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	h.logger.Info("Login succeeded",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns one user's public profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Entrepreneurs(c *gin.Context) {
	users, err := h.users.Entrepreneurs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list entrepreneurs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AuthHandler) Coaches(c *gin.Context) {
	users, err := h.users.Coaches(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list coaches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
