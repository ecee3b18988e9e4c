package models

import (
	"time"
)

type AffiliateProfile struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId           uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	AffiliateCode    string    `gorm:"column:affiliate_code;size:50;not null;uniqueIndex" json:"affiliate_code"`
	DisplayName      string    `gorm:"column:display_name;size:255" json:"display_name"`
	CommissionRate   float64   `gorm:"column:commission_rate;type:decimal(20,2);default:0.00" json:"commission_rate"`
	CommissionType   string    `gorm:"column:commission_type;size:20;default:PERCENTAGE" json:"commission_type"`
	Tier             int       `gorm:"column:tier;default:1" json:"tier"`
	TotalEarnings    float64   `gorm:"column:total_earnings;type:decimal(20,2);default:0.00" json:"total_earnings"`
	TotalConversions int       `gorm:"column:total_conversions;default:0" json:"total_conversions"`
	TotalClicks      int       `gorm:"column:total_clicks;default:0" json:"total_clicks"`
	IsActive         bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AffiliateProfile) TableName() string {
	return "affiliate_profiles"
}

// AffiliateConversion records the commission earned on one settled
// transaction. The unique index on transaction_id enforces at most one
// conversion per transaction even under concurrent settlement attempts.
type AffiliateConversion struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AffiliateId      uint      `gorm:"column:affiliate_id;not null;index" json:"affiliate_id"`
	TransactionId    uint      `gorm:"column:transaction_id;not null;uniqueIndex" json:"transaction_id"`
	CommissionAmount float64   `gorm:"column:commission_amount;type:decimal(20,2);not null" json:"commission_amount"`
	CommissionRate   float64   `gorm:"column:commission_rate;type:decimal(20,2);not null" json:"commission_rate"`
	CommissionType   string    `gorm:"column:commission_type;size:20;default:PERCENTAGE" json:"commission_type"`
	PaidOut          bool      `gorm:"column:paid_out;default:false" json:"paid_out"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AffiliateConversion) TableName() string {
	return "affiliate_conversions"
}
