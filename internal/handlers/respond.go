package handlers

import (
	"errors"
	"net/http"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP statuses. Anything unmapped is a
// 500 with a generic message so internals never leak to the caller.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrPayoutNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrCouponExpired),
		errors.Is(err, services.ErrCouponLimitReached),
		errors.Is(err, services.ErrItemNotPurchasable),
		errors.Is(err, services.ErrAlreadyOwned),
		errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrFeeExceedsAmount):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrPinNotSet),
		errors.Is(err, services.ErrInvalidPin):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrStateConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrPaymentLinkFailed):
		status = http.StatusBadGateway
		message = err.Error()
	}

	c.JSON(status, common.NewErrorResponse(message, nil, status))
}
