package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/services"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	authService  *services.AuthService
	levelService *services.LevelService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService, levelService *services.LevelService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		levelService: levelService,
	}
}

// GetProfile returns a user's public profile with their level state.
// GET /users/:wallet
func (h *UserHandler) GetProfile(c *gin.Context) {
	wallet := c.Param("wallet")

	user, err := h.authService.GetUserByWallet(wallet)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	level, err := h.levelService.GetLevel(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load level"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"level": level,
	})
}

// GetMyLevel returns the caller's level state.
// GET /users/me/level
func (h *UserHandler) GetMyLevel(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	level, err := h.levelService.GetLevel(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load level"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"level": level})
}

// UpdateNickname changes the caller's nickname.
// PUT /users/me/nickname
func (h *UserHandler) UpdateNickname(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Nickname string `json:"nickname" binding:"required,min=3,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.UpdateNickname(wallet, req.Nickname); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "nickname already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update nickname"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "nickname updated"})
}
