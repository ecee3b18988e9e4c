package services

import "errors"

// Validation and state errors surfaced to the caller with a specific message.
// Downstream automation failures (grants, notifications) are logged and
// swallowed instead, so a committed payment is never rolled back by them.
var (
	ErrCouponNotFound     = errors.New("coupon not found or inactive")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponLimitReached = errors.New("coupon usage limit reached")

	ErrItemNotFound       = errors.New("item not found")
	ErrItemNotPurchasable = errors.New("item is not available for purchase")
	ErrAlreadyOwned       = errors.New("you already own this product")
	ErrAlreadyEnrolled    = errors.New("you are already enrolled in this course")
	ErrAlreadyMember      = errors.New("you already have an active membership")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStateConflict       = errors.New("transaction is not pending")

	ErrPaymentLinkFailed = errors.New("unable to create payment link")

	ErrBelowMinimum        = errors.New("amount is below the minimum withdrawal")
	ErrPinNotSet           = errors.New("withdrawal PIN has not been set")
	ErrInvalidPin          = errors.New("invalid withdrawal PIN")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrFeeExceedsAmount    = errors.New("admin fee exceeds the requested amount")

	ErrWalletNotFound = errors.New("wallet not found")
	ErrPayoutNotFound = errors.New("payout not found")
)
