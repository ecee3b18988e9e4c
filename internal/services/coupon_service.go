package services

import (
	"math"
	"time"

	"affiliate-service/internal/models"

	"gorm.io/gorm"
)

type CouponService struct {
	DB *gorm.DB
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{DB: db}
}

// CouponQuote is the result of validating a code against a base price. The
// coupon is not consumed until the checkout transaction is created.
type CouponQuote struct {
	CouponId       uint    `json:"coupon_id"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	AffiliateId    *uint   `json:"affiliate_id"`
}

// ComputeDiscount returns the discount a coupon yields on a base price.
// PERCENTAGE rounds half away from zero; FLAT is capped so the payable
// amount never goes negative.
func ComputeDiscount(discountType string, value, basePrice float64) float64 {
	var discount float64
	switch discountType {
	case models.DiscountTypePercentage:
		discount = math.Round(basePrice * value / 100)
	case models.DiscountTypeFlat:
		discount = value
	}
	if discount > basePrice {
		discount = basePrice
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Validate checks a code against its activity window and usage limit and
// quotes the discount for the given base price.
func (s *CouponService) Validate(code string, basePrice float64) (*CouponQuote, error) {
	var coupon models.Coupon
	if err := s.DB.Where("code = ? AND is_active = ?", code, true).First(&coupon).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return nil, ErrCouponExpired
	}

	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return nil, ErrCouponLimitReached
	}

	discount := ComputeDiscount(coupon.DiscountType, coupon.DiscountValue, basePrice)

	return &CouponQuote{
		CouponId:       coupon.ID,
		Code:           coupon.Code,
		DiscountAmount: discount,
		FinalAmount:    basePrice - discount,
		AffiliateId:    coupon.AffiliateId,
	}, nil
}

// Consume increments usage_count by exactly one, guarded against the usage
// limit in the same statement so concurrent checkouts cannot over-redeem.
// It must run inside the transaction that creates the checkout row.
func (s *CouponService) Consume(tx *gorm.DB, couponId uint) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND (usage_limit = 0 OR usage_count < usage_limit)", couponId, true).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponLimitReached
	}
	return nil
}

type CreateCouponDTO struct {
	Code          string
	DiscountType  string
	DiscountValue float64
	UsageLimit    int
	ExpiresAt     *time.Time
	AffiliateId   *uint
	CreatedBy     uint
}

func (s *CouponService) CreateCoupon(data CreateCouponDTO) (*models.Coupon, error) {
	coupon := models.Coupon{
		Code:          data.Code,
		DiscountType:  data.DiscountType,
		DiscountValue: data.DiscountValue,
		UsageLimit:    data.UsageLimit,
		IsActive:      true,
		ExpiresAt:     data.ExpiresAt,
		AffiliateId:   data.AffiliateId,
		CreatedBy:     data.CreatedBy,
	}
	if err := s.DB.Create(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *CouponService) DeactivateCoupon(couponId uint) error {
	return s.DB.Model(&models.Coupon{}).Where("id = ?", couponId).
		Update("is_active", false).Error
}

func (s *CouponService) ListCoupons(affiliateId *uint) ([]models.Coupon, error) {
	var coupons []models.Coupon
	query := s.DB.Order("created_at DESC")
	if affiliateId != nil {
		query = query.Where("affiliate_id = ?", *affiliateId)
	}
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}
