package models

import (
	"time"
)

// Payout statuses
const (
	PayoutStatusPending    = "PENDING"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusApproved   = "APPROVED"
	PayoutStatusPaid       = "PAID"
	PayoutStatusRejected   = "REJECTED"
)

type Payout struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletId      uint      `gorm:"column:wallet_id;not null;index" json:"wallet_id"`
	UserId        uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Amount        float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Fee           float64   `gorm:"column:fee;type:decimal(20,2);default:0.00" json:"fee"`
	NetAmount     float64   `gorm:"column:net_amount;type:decimal(20,2);not null" json:"net_amount"`
	Status        string    `gorm:"column:status;size:20;default:PENDING;index" json:"status"`
	BankName      string    `gorm:"column:bank_name;size:150" json:"bank_name"`
	BankCode      string    `gorm:"column:bank_code;size:20" json:"bank_code"`
	AccountName   string    `gorm:"column:account_name;size:150" json:"account_name"`
	AccountNumber string    `gorm:"column:account_number;size:50" json:"account_number"`
	Reference     string    `gorm:"column:reference;size:100;uniqueIndex" json:"reference"`
	ProviderRef   string    `gorm:"column:provider_ref;size:255" json:"provider_ref"`
	Comment       string    `gorm:"column:comment;type:text" json:"comment"`
	UpdatedBy     string    `gorm:"column:updated_by;size:150" json:"updated_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payout) TableName() string {
	return "payouts"
}

type UserPin struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	PinHash   string    `gorm:"column:pin_hash;size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserPin) TableName() string {
	return "user_pins"
}
