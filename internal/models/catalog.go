package models

import (
	"time"
)

type Membership struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Price          float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	DurationDays   int       `gorm:"column:duration_days;not null" json:"duration_days"`
	CommissionRate float64   `gorm:"column:commission_rate;type:decimal(20,2);default:0.00" json:"commission_rate"`
	CommissionType string    `gorm:"column:commission_type;size:20;default:PERCENTAGE" json:"commission_type"`
	IsSupplier     bool      `gorm:"column:is_supplier;default:false" json:"is_supplier"`
	IsActive       bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

type Product struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Price          float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	CommissionRate float64   `gorm:"column:commission_rate;type:decimal(20,2);default:0.00" json:"commission_rate"`
	CommissionType string    `gorm:"column:commission_type;size:20;default:PERCENTAGE" json:"commission_type"`
	IsActive       bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type Course struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string    `gorm:"column:title;size:255;not null" json:"title"`
	Price          float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	CommissionRate float64   `gorm:"column:commission_rate;type:decimal(20,2);default:0.00" json:"commission_rate"`
	CommissionType string    `gorm:"column:commission_type;size:20;default:PERCENTAGE" json:"commission_type"`
	IsPublished    bool      `gorm:"column:is_published;default:false" json:"is_published"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Entitlement grant types bound to a membership
const (
	GrantTypeGroup   = "GROUP"
	GrantTypeCourse  = "COURSE"
	GrantTypeProduct = "PRODUCT"
)

// MembershipEntitlement binds a membership plan to a group, course or product
// that is granted automatically when the membership is first provisioned.
type MembershipEntitlement struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MembershipId uint      `gorm:"column:membership_id;not null;index" json:"membership_id"`
	GrantType    string    `gorm:"column:grant_type;size:20;not null" json:"grant_type"`
	RefId        uint      `gorm:"column:ref_id;not null" json:"ref_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MembershipEntitlement) TableName() string {
	return "membership_entitlements"
}
