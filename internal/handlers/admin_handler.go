package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/services"
)

// AdminHandler handles owner-only moderation and settings endpoints
type AdminHandler struct {
	adminService  *services.AdminService
	raffleService *services.RaffleService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService, raffleService *services.RaffleService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		raffleService: raffleService,
	}
}

// RequireOwner is middleware rejecting non-owner wallets.
func (h *AdminHandler) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, exists := auth.GetWalletAddress(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		if !h.adminService.IsOwner(wallet) {
			c.JSON(http.StatusForbidden, gin.H{"error": "owner access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// verifyAdminAction checks the owner's signature over the named action.
// Admin mutations need a fresh wallet signature on top of the JWT.
func (h *AdminHandler) verifyAdminAction(c *gin.Context, action, signature, timestamp string) bool {
	wallet, _ := auth.GetWalletAddress(c)

	if !auth.VerifyTimestamp(timestamp) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature timestamp expired"})
		return false
	}
	if !auth.VerifySignature(auth.AdminMessage(action, timestamp), signature, wallet) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return false
	}
	return true
}

// BanUser bans a wallet from the platform.
// POST /admin/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)

	var req struct {
		TargetWallet string `json:"target_wallet" binding:"required"`
		Reason       string `json:"reason"`
		IPAddress    string `json:"ip_address"`
		Signature    string `json:"signature" binding:"required"`
		Timestamp    string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "ban", req.Signature, req.Timestamp) {
		return
	}

	var ip *string
	if req.IPAddress != "" {
		ip = &req.IPAddress
	}
	if err := h.adminService.BanUser(wallet, req.TargetWallet, req.Reason, ip); err != nil {
		h.writeAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

// UnbanUser lifts a wallet's ban.
// POST /admin/unban
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)

	var req struct {
		TargetWallet string `json:"target_wallet" binding:"required"`
		Signature    string `json:"signature" binding:"required"`
		Timestamp    string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "unban", req.Signature, req.Timestamp) {
		return
	}

	if err := h.adminService.UnbanUser(wallet, req.TargetWallet); err != nil {
		h.writeAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
}

// MuteUser mutes a wallet in chat.
// POST /admin/mute
func (h *AdminHandler) MuteUser(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)

	var req struct {
		TargetWallet    string `json:"target_wallet" binding:"required"`
		Reason          string `json:"reason"`
		DurationMinutes int    `json:"duration_minutes"`
		Signature       string `json:"signature" binding:"required"`
		Timestamp       string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "mute", req.Signature, req.Timestamp) {
		return
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	if err := h.adminService.MuteUser(wallet, req.TargetWallet, req.Reason, duration); err != nil {
		h.writeAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user muted"})
}

// UnmuteUser clears a wallet's mutes.
// POST /admin/unmute
func (h *AdminHandler) UnmuteUser(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)

	var req struct {
		TargetWallet string `json:"target_wallet" binding:"required"`
		Signature    string `json:"signature" binding:"required"`
		Timestamp    string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "unmute", req.Signature, req.Timestamp) {
		return
	}

	if err := h.adminService.UnmuteUser(wallet, req.TargetWallet); err != nil {
		h.writeAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unmuted"})
}

// SetSetting upserts a runtime game setting.
// PUT /admin/settings
func (h *AdminHandler) SetSetting(c *gin.Context) {
	wallet, _ := auth.GetWalletAddress(c)

	var req struct {
		Key       string `json:"key" binding:"required"`
		Value     string `json:"value" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Timestamp string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "set_setting", req.Signature, req.Timestamp) {
		return
	}

	if err := h.adminService.SetSetting(wallet, req.Key, req.Value); err != nil {
		h.writeAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}

// DrawRaffleWinner records an owner-picked raffle winner.
// POST /admin/raffle/draw
func (h *AdminHandler) DrawRaffleWinner(c *gin.Context) {
	var req struct {
		TicketNumber int64  `json:"ticket_number" binding:"required"`
		Signature    string `json:"signature" binding:"required"`
		Timestamp    string `json:"timestamp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.verifyAdminAction(c, "raffle_draw", req.Signature, req.Timestamp) {
		return
	}

	winner, err := h.raffleService.RecordWinner(c.Request.Context(), req.TicketNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"winner": winner})
}

// GetLogs returns the admin audit trail.
// GET /admin/logs
func (h *AdminHandler) GetLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := h.adminService.GetLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *AdminHandler) writeAdminError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotOwner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "owner access required"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "admin action failed"})
}
