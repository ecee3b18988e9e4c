package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"affiliate-service/internal/models"
	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	Settlement *services.SettlementService
	Xendit     *services.XenditService
}

func NewSettlementHandler(settlement *services.SettlementService, xendit *services.XenditService) *SettlementHandler {
	return &SettlementHandler{Settlement: settlement, Xendit: xendit}
}

type ApproveRequest struct {
	Notes string `json:"notes"`
}

// ApproveTransaction settles a pending transaction after manual payment
// verification.
func (h *SettlementHandler) ApproveTransaction(c *gin.Context) {
	transactionId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	var req ApproveRequest
	c.ShouldBindJSON(&req)

	trx, err := h.Settlement.Settle(uint(transactionId), req.Notes, models.PaymentMethodManual)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Transaction approved"))
}

func (h *SettlementHandler) RejectTransaction(c *gin.Context) {
	transactionId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid transaction id", nil, http.StatusBadRequest))
		return
	}

	var req ApproveRequest
	c.ShouldBindJSON(&req)

	if err := h.Settlement.Reject(uint(transactionId), req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Transaction rejected"))
}

// HandlePaymentWebhook processes provider invoice callbacks. The provider
// retries until it sees a 2xx, so every recognized-but-unactionable payload
// must still return 200.
func (h *SettlementHandler) HandlePaymentWebhook(c *gin.Context) {
	token := c.GetHeader("x-callback-token")
	if !h.Xendit.VerifyCallbackToken(token) {
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid callback token", nil, http.StatusUnauthorized))
		return
	}

	var payload services.InvoiceCallbackDTO
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Xendit.LogCallback(nil, "Malformed payload", 0, "")
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Malformed payload", nil, http.StatusBadRequest))
		return
	}

	trx, err := h.Xendit.FindByInvoice(payload.ExternalId, payload.Id)
	if err != nil {
		h.Xendit.LogCallback(payload, "Unknown transaction", 0, payload.ExternalId)
		c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Ignored"))
		return
	}

	switch strings.ToUpper(payload.Status) {
	case "PAID", "SETTLED":
		_, err = h.Settlement.Settle(trx.ID, "Settled by payment provider", "")
	case "EXPIRED":
		err = h.Settlement.Reject(trx.ID, "Invoice expired at provider")
	default:
		h.Xendit.LogCallback(payload, "Unhandled status "+payload.Status, 0, trx.InvoiceNumber)
		c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Ignored"))
		return
	}

	// A state conflict means a concurrent settle already won; the callback is
	// acknowledged so the provider stops retrying.
	if err != nil && err != services.ErrStateConflict {
		h.Xendit.LogCallback(payload, err.Error(), 0, trx.InvoiceNumber)
		respondError(c, err)
		return
	}

	h.Xendit.LogCallback(payload, "Processed", 1, trx.InvoiceNumber)
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Processed"))
}
