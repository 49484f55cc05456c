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

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetMessages returns recent messages for a room. Defaults to the
// global room when no room_id is given.
// GET /chat/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID := models.GlobalChatRoomID
	if raw := c.Query("room_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		roomID = parsed
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	messages, err := h.chatService.GetMessages(roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage posts a chat message.
// POST /chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		RoomID  string `json:"room_id"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID := models.GlobalChatRoomID
	if req.RoomID != "" {
		parsed, err := uuid.Parse(req.RoomID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		roomID = parsed
	}

	msg, err := h.chatService.SendMessage(roomID, wallet, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case errors.Is(err, services.ErrMessageLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is too long"})
		case errors.Is(err, services.ErrUserMuted):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are muted"})
		case errors.Is(err, services.ErrUserBanned):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are banned"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
