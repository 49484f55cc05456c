package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/services"
)

// RaffleHandler handles raffle endpoints
type RaffleHandler struct {
	raffleService *services.RaffleService
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(raffleService *services.RaffleService) *RaffleHandler {
	return &RaffleHandler{raffleService: raffleService}
}

// GetStatus returns the raffle's ticket count and past winners.
// GET /raffle
func (h *RaffleHandler) GetStatus(c *gin.Context) {
	count, err := h.raffleService.TicketCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load raffle"})
		return
	}

	winners, err := h.raffleService.GetWinners(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load winners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets_sold": count,
		"winners":      winners,
	})
}

// BuyTicket purchases the next raffle ticket for the caller.
// POST /raffle/tickets
func (h *RaffleHandler) BuyTicket(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.raffleService.BuyTicket(c.Request.Context(), wallet, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to buy ticket"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GetMyTickets lists the caller's tickets in the current raffle.
// GET /raffle/tickets
func (h *RaffleHandler) GetMyTickets(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tickets, err := h.raffleService.GetTickets(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// GetWinners lists past raffle winners.
// GET /raffle/winners
func (h *RaffleHandler) GetWinners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	winners, err := h.raffleService.GetWinners(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load winners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"winners": winners})
}
