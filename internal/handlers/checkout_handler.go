package handlers

import (
	"net/http"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Coupons  *services.CouponService
}

func NewCheckoutHandler(checkout *services.CheckoutService, coupons *services.CouponService) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkout, Coupons: coupons}
}

type CreateCheckoutRequest struct {
	UserId        uint    `json:"user_id" binding:"required"`
	ItemType      string  `json:"item_type" binding:"required"`
	ItemId        uint    `json:"item_id" binding:"required"`
	CouponCode    string  `json:"coupon_code"`
	CustomerName  string  `json:"customer_name" binding:"required"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	CustomerPhone string  `json:"customer_phone"`
}

func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Checkout.CreateCheckout(services.CreateCheckoutDTO{
		UserId:         req.UserId,
		ItemType:       req.ItemType,
		ItemId:         req.ItemId,
		CouponCode:     req.CouponCode,
		ReferralCookie: referralCookie(c),
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "Checkout created"))
}

// referralCookie reads the affiliate tracking cookie set by the storefront.
func referralCookie(c *gin.Context) string {
	cookie, err := c.Cookie("referral")
	if err != nil {
		return ""
	}
	return cookie
}

// ValidateCoupon quotes a coupon against a base price without consuming it.
func (h *CheckoutHandler) ValidateCoupon(c *gin.Context) {
	code := c.Param("code")
	var query struct {
		Price float64 `form:"price" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	quote, err := h.Coupons.Validate(code, query.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(quote, "Coupon is valid"))
}
