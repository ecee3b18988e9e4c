package models

import (
	"time"
)

// Discount / commission value types
const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFlat       = "FLAT"
)

type Coupon struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string     `gorm:"column:code;size:50;not null;uniqueIndex" json:"code"`
	DiscountType  string     `gorm:"column:discount_type;size:20;not null" json:"discount_type"`
	DiscountValue float64    `gorm:"column:discount_value;type:decimal(20,2);not null" json:"discount_value"`
	UsageLimit    int        `gorm:"column:usage_limit;default:0" json:"usage_limit"`
	UsageCount    int        `gorm:"column:usage_count;default:0" json:"usage_count"`
	IsActive      bool       `gorm:"column:is_active;default:true" json:"is_active"`
	ExpiresAt     *time.Time `gorm:"column:expires_at" json:"expires_at"`
	AffiliateId   *uint      `gorm:"column:affiliate_id;index" json:"affiliate_id"`
	CreatedBy     uint       `gorm:"column:created_by" json:"created_by"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}
