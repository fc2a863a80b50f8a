package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habitpact/internal/api/middleware"
	"habitpact/internal/service"
)

type TransactionHandler struct {
	ledger *service.LedgerService
}

func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

func (h *TransactionHandler) List(c *gin.Context) {
	txs, err := h.ledger.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

type confirmRequest struct {
	TransactionID int64 `json:"transactionId" binding:"required"`
}

func (h *TransactionHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tx, user, err := h.ledger.Confirm(c.Request.Context(), middleware.UserID(c), req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction": tx,
		"totals": gin.H{
			"totalEarned": user.TotalEarned,
			"totalSpent":  user.TotalSpent,
		},
	})
}
