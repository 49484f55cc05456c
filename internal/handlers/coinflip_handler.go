package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/models"
	"bolada-backend/internal/services"
)

// CoinflipHandler handles coinflip room endpoints
type CoinflipHandler struct {
	coinflipService *services.CoinflipService
}

// NewCoinflipHandler creates a new CoinflipHandler
func NewCoinflipHandler(coinflipService *services.CoinflipService) *CoinflipHandler {
	return &CoinflipHandler{coinflipService: coinflipService}
}

// GetOpenRooms lists rooms waiting for an opponent.
// GET /coinflip/rooms
func (h *CoinflipHandler) GetOpenRooms(c *gin.Context) {
	rooms, err := h.coinflipService.GetOpenRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom opens a new coinflip room.
// POST /coinflip/rooms
func (h *CoinflipHandler) CreateRoom(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Side   string  `json:"side" binding:"required"`
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.coinflipService.CreateRoom(wallet, models.CoinSide(req.Side), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSide):
			c.JSON(http.StatusBadRequest, gin.H{"error": "side must be heads or tails"})
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// JoinRoom enters a waiting room and resolves the flip.
// POST /coinflip/rooms/:id/join
func (h *CoinflipHandler) JoinRoom(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.coinflipService.JoinRoom(roomID, wallet)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotJoinable):
			c.JSON(http.StatusConflict, gin.H{"error": "room is not open for joining"})
		case errors.Is(err, services.ErrOwnRoom):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot join your own room"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// CancelRoom closes a waiting room the caller created.
// DELETE /coinflip/rooms/:id
func (h *CoinflipHandler) CancelRoom(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if err := h.coinflipService.CancelRoom(roomID, wallet); err != nil {
		if errors.Is(err, services.ErrRoomNotJoinable) {
			c.JSON(http.StatusConflict, gin.H{"error": "room cannot be cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room cancelled"})
}

// GetHistory lists the caller's recent flips.
// GET /coinflip/history
func (h *CoinflipHandler) GetHistory(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.coinflipService.GetHistory(wallet, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
