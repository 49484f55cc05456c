package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bolada-backend/internal/blockchain"
)

// WalletHandler handles on-chain wallet read endpoints
type WalletHandler struct {
	solanaClient *blockchain.SolanaClient
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(solanaClient *blockchain.SolanaClient) *WalletHandler {
	return &WalletHandler{solanaClient: solanaClient}
}

// GetBalance returns the SOL balance of a wallet.
// GET /wallet/:address/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	address := c.Param("address")
	if !h.solanaClient.ValidateWalletAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	balance, err := h.solanaClient.GetSOLBalance(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": address,
		"balance_sol":    balance,
	})
}

// VerifyTransaction checks a deposit transaction on chain.
// GET /wallet/transactions/:signature
func (h *WalletHandler) VerifyTransaction(c *gin.Context) {
	signature := c.Param("signature")

	details, err := h.solanaClient.VerifyTransaction(c.Request.Context(), signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if details == nil {
		c.JSON(http.StatusOK, gin.H{"confirmed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"confirmed": details.Confirmed,
		"sender":    details.Sender,
		"receiver":  details.Receiver,
		"amount":    details.Amount,
	})
}
