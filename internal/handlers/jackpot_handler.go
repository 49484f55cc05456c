package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/repository"
	"bolada-backend/internal/services"
)

// JackpotHandler handles jackpot round endpoints
type JackpotHandler struct {
	jackpotService *services.JackpotService
	adminService   *services.AdminService
}

// NewJackpotHandler creates a new JackpotHandler
func NewJackpotHandler(jackpotService *services.JackpotService, adminService *services.AdminService) *JackpotHandler {
	return &JackpotHandler{
		jackpotService: jackpotService,
		adminService:   adminService,
	}
}

// GetCurrentRound returns the active round, opening one if none exists.
// GET /jackpot/current
func (h *JackpotHandler) GetCurrentRound(c *gin.Context) {
	round, err := h.jackpotService.EnsureActiveRound(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load round"})
		return
	}

	bets, err := h.jackpotService.GetRoundBets(c.Request.Context(), round.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bets"})
		return
	}

	endsAt := round.StartedAt.Add(h.jackpotService.RoundDuration())
	remaining := time.Until(endsAt)
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"round":             round,
		"bets":              bets,
		"ends_at":           endsAt,
		"seconds_remaining": int64(remaining.Seconds()),
	})
}

// GetRoundBets returns all bets for a round in ticket order.
// GET /jackpot/rounds/:id/bets
func (h *JackpotHandler) GetRoundBets(c *gin.Context) {
	roundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	if _, err := h.jackpotService.GetRoundByID(c.Request.Context(), roundID); err != nil {
		if errors.Is(err, services.ErrRoundNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load round"})
		return
	}

	bets, err := h.jackpotService.GetRoundBets(c.Request.Context(), roundID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

// GetHistory returns recently completed rounds.
// GET /jackpot/history
func (h *JackpotHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rounds, err := h.jackpotService.GetRecentRounds(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// PlaceBet wagers SOL on the current round. Requires a wallet signature
// over the bet message to authorize the exact amount.
// POST /jackpot/bet
func (h *JackpotHandler) PlaceBet(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount    float64 `json:"amount" binding:"required"`
		Signature string  `json:"signature" binding:"required"`
		Timestamp string  `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.VerifyTimestamp(req.Timestamp) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature timestamp expired"})
		return
	}
	message := auth.BetMessage(req.Amount, req.Timestamp)
	if !auth.VerifySignature(message, req.Signature, wallet) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	round, err := h.jackpotService.EnsureActiveRound(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load round"})
		return
	}

	placement, err := h.jackpotService.PlaceBet(c.Request.Context(), round.ID, wallet, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount too low to earn a ticket"})
		case errors.Is(err, repository.ErrRoundNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "round is no longer active"})
		case errors.Is(err, repository.ErrRoundExpired):
			c.JSON(http.StatusConflict, gin.H{"error": "round timer has expired"})
		case errors.Is(err, services.ErrRoundNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place bet"})
		}
		return
	}

	c.JSON(http.StatusOK, placement)
}

// DrawWinner resolves a round. Anyone may trigger the draw once the
// timer is up; the owner may force it early with a signed admin message.
// POST /jackpot/rounds/:id/draw
func (h *JackpotHandler) DrawWinner(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	// Body is optional: timer-expired draws need no signature.
	var req struct {
		Signature string `json:"signature"`
		Timestamp string `json:"timestamp"`
	}
	_ = c.ShouldBindJSON(&req)

	// A valid owner signature over the draw message bypasses the timer.
	manual := false
	if req.Signature != "" && h.adminService.IsOwner(wallet) {
		if !auth.VerifyTimestamp(req.Timestamp) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "signature timestamp expired"})
			return
		}
		message := auth.DrawMessage(roundID.String(), req.Timestamp)
		if !auth.VerifySignature(message, req.Signature, wallet) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		manual = true
	}

	result, err := h.jackpotService.DrawWinner(c.Request.Context(), roundID, manual)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoundNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		case errors.Is(err, services.ErrTimerNotExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "round timer has not expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to draw winner"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
