package handlers

import (
	"net/http"
	"strconv"
	"time"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	Reporting *services.ReportingService
}

func NewTransactionHandler(reporting *services.ReportingService) *TransactionHandler {
	return &TransactionHandler{Reporting: reporting}
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userId, _ := strconv.Atoi(c.Query("user_id"))
	affiliateId, _ := strconv.Atoi(c.Query("affiliate_id"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	query := services.TransactionQueryDTO{
		UserId:      uint(userId),
		AffiliateId: uint(affiliateId),
		Status:      c.Query("status"),
		Type:        c.Query("type"),
		Page:        page,
		Limit:       limit,
	}

	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			query.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			query.To = &end
		}
	}

	result, err := h.Reporting.ListTransactions(query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transactionId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Reporting.GetTransaction(uint(transactionId))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Transaction fetched"))
}
