package handlers

import (
	"net/http"
	"strconv"
	"time"

	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	Coupons *services.CouponService
}

func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{Coupons: coupons}
}

type CreateCouponRequest struct {
	Code          string     `json:"code" binding:"required"`
	DiscountType  string     `json:"discount_type" binding:"required,oneof=PERCENTAGE FLAT"`
	DiscountValue float64    `json:"discount_value" binding:"required,gt=0"`
	UsageLimit    int        `json:"usage_limit"`
	ExpiresAt     *time.Time `json:"expires_at"`
	AffiliateId   *uint      `json:"affiliate_id"`
	CreatedBy     uint       `json:"created_by"`
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	coupon, err := h.Coupons.CreateCoupon(services.CreateCouponDTO{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		AffiliateId:   req.AffiliateId,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(coupon, "Coupon created"))
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	var affiliateId *uint
	if raw := c.Query("affiliate_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid affiliate id", nil, http.StatusBadRequest))
			return
		}
		id := uint(parsed)
		affiliateId = &id
	}

	coupons, err := h.Coupons.ListCoupons(affiliateId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(coupons, "Coupons fetched"))
}

func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	couponId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid coupon id", nil, http.StatusBadRequest))
		return
	}

	if err := h.Coupons.DeactivateCoupon(uint(couponId)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Coupon deactivated"))
}
