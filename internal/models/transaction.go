package models

import (
	"time"
)

// Transaction types
const (
	TrxTypeMembership         = "MEMBERSHIP"
	TrxTypeProduct            = "PRODUCT"
	TrxTypeCourse             = "COURSE"
	TrxTypeSupplierMembership = "SUPPLIER_MEMBERSHIP"
)

// Transaction statuses. A transaction only ever moves PENDING -> SUCCESS or
// PENDING -> FAILED; both end states are terminal.
const (
	TrxStatusPending = "PENDING"
	TrxStatusSuccess = "SUCCESS"
	TrxStatusFailed  = "FAILED"
)

// Payment methods
const (
	PaymentMethodFree    = "FREE"
	PaymentMethodInvoice = "INVOICE"
	PaymentMethodManual  = "MANUAL"
)

type Transaction struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId        uint       `gorm:"column:user_id;not null;index:idx_trx_user" json:"user_id"`
	Type          string     `gorm:"column:type;size:50;not null" json:"type"`
	ItemId        uint       `gorm:"column:item_id;not null" json:"item_id"`
	Amount        float64    `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Discount      float64    `gorm:"column:discount;type:decimal(20,2);default:0.00" json:"discount"`
	Status        string     `gorm:"column:status;size:20;default:PENDING;index" json:"status"`
	PaymentMethod string     `gorm:"column:payment_method;size:50" json:"payment_method"`
	InvoiceNumber string     `gorm:"column:invoice_number;size:50;uniqueIndex" json:"invoice_number"`
	AffiliateId   *uint      `gorm:"column:affiliate_id" json:"affiliate_id"`
	CouponId      *uint      `gorm:"column:coupon_id;index" json:"coupon_id"`
	CustomerName  string     `gorm:"column:customer_name;size:255" json:"customer_name"`
	CustomerEmail string     `gorm:"column:customer_email;size:255" json:"customer_email"`
	CustomerPhone string     `gorm:"column:customer_phone;size:50" json:"customer_phone"`
	PaymentUrl    string     `gorm:"column:payment_url;size:500" json:"payment_url"`
	PaymentRef    string     `gorm:"column:payment_ref;size:255;index" json:"payment_ref"`
	Metadata      string     `gorm:"column:metadata;type:text" json:"metadata"`
	Notes         string     `gorm:"column:notes;type:text" json:"notes"`
	PaidAt        *time.Time `gorm:"column:paid_at" json:"paid_at"`
	ExpiresAt     *time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// InvoiceCounter backs monotonic invoice number allocation. A single row is
// locked and incremented inside the checkout transaction so concurrent
// checkouts never collide on a number.
type InvoiceCounter struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Value     int64     `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InvoiceCounter) TableName() string {
	return "invoice_counters"
}
