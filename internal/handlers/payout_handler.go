package handlers

import (
	"net/http"
	"strconv"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	Payouts *services.PayoutService
}

func NewPayoutHandler(payouts *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{Payouts: payouts}
}

type RequestPayoutRequest struct {
	UserId        uint    `json:"user_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Pin           string  `json:"pin"`
	BankName      string  `json:"bank_name" binding:"required"`
	BankCode      string  `json:"bank_code" binding:"required"`
	AccountName   string  `json:"account_name" binding:"required"`
	AccountNumber string  `json:"account_number" binding:"required"`
}

func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	payout, err := h.Payouts.RequestPayout(services.RequestPayoutDTO{
		UserId:        req.UserId,
		Amount:        req.Amount,
		Pin:           req.Pin,
		BankName:      req.BankName,
		BankCode:      req.BankCode,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(payout, "Withdrawal request submitted"))
}

type SetPinRequest struct {
	UserId uint   `json:"user_id" binding:"required"`
	Pin    string `json:"pin" binding:"required,min=4,max=8"`
}

func (h *PayoutHandler) SetPin(c *gin.Context) {
	var req SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Payouts.SetPin(req.UserId, req.Pin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "PIN updated"))
}

func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	userId, _ := strconv.Atoi(c.Query("user_id"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.Payouts.ListPayouts(services.PayoutQueryDTO{
		UserId: uint(userId),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type UpdatePayoutStatusRequest struct {
	Status    string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
	Comment   string `json:"comment"`
	UpdatedBy string `json:"updated_by"`
}

func (h *PayoutHandler) UpdatePayoutStatus(c *gin.Context) {
	payoutId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid payout id", nil, http.StatusBadRequest))
		return
	}

	var req UpdatePayoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	payout, err := h.Payouts.UpdateStatus(services.UpdatePayoutStatusDTO{
		PayoutId:  uint(payoutId),
		Status:    req.Status,
		Comment:   req.Comment,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(payout, "Payout updated"))
}
