package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService     *services.AuthService
	referralService *services.ReferralService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, referralService *services.ReferralService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		referralService: referralService,
	}
}

// WalletLogin authenticates a user by their Solana wallet address and signature.
// Requires a signature of auth.LoginMessage by the wallet's key.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		ReferralCode  string `json:"referral_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.WalletAddress) < 32 || len(req.WalletAddress) > 44 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	if !auth.VerifySignature(auth.LoginMessage, req.Signature, req.WalletAddress) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	user, token, err := h.authService.ProcessWalletLogin(req.WalletAddress)
	if err != nil {
		if errors.Is(err, services.ErrBannedWallet) {
			c.JSON(http.StatusForbidden, gin.H{"error": "wallet is banned"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	// Referral codes only bind on first touch; later logins ignore them.
	if req.ReferralCode != "" {
		if _, err := h.referralService.ApplyCode(req.ReferralCode, req.WalletAddress); err != nil &&
			!errors.Is(err, services.ErrAlreadyReferred) {
			c.JSON(http.StatusOK, gin.H{
				"token":          token,
				"user":           user,
				"referral_error": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout handles user logout (stateless JWT, client discards the token)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the currently authenticated user's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByWallet(wallet)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
