package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/services"
)

// ReferralHandler handles referral endpoints
type ReferralHandler struct {
	referralService *services.ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetMyCode returns the caller's referral code, creating it on first use.
// GET /referrals/code
func (h *ReferralHandler) GetMyCode(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.referralService.EnsureCode(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// ApplyCode binds the caller to a referrer. One shot per wallet.
// POST /referrals/apply
func (h *ReferralHandler) ApplyCode(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	referral, err := h.referralService.ApplyCode(req.Code, wallet)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidReferralCode):
			c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
		case errors.Is(err, services.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot refer yourself"})
		case errors.Is(err, services.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, gin.H{"error": "wallet already has a referrer"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"referral": referral})
}

// GetMyReferrals returns the caller's referred wallets and earnings.
// GET /referrals
func (h *ReferralHandler) GetMyReferrals(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	referrals, err := h.referralService.GetReferrals(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referrals"})
		return
	}

	total, err := h.referralService.TotalEarned(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals":    referrals,
		"total_earned": total,
	})
}

// GetMyEarnings returns per-wager commission entries for the caller.
// GET /referrals/earnings
func (h *ReferralHandler) GetMyEarnings(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	earnings, err := h.referralService.GetEarnings(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"earnings": earnings})
}
