package models

import (
	"time"
)

// Wallet transaction types
const (
	WalletTrxCommission     = "COMMISSION"
	WalletTrxPayout         = "PAYOUT"
	WalletTrxPayoutReversal = "PAYOUT_REVERSAL"
)

// Wallet balance is only ever mutated together with an appended
// WalletTransaction row; balance must equal the sum of the ledger at all
// times.
type Wallet struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId        uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Balance       float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	TotalEarnings float64   `gorm:"column:total_earnings;type:decimal(20,2);default:0.00" json:"total_earnings"`
	TotalPayout   float64   `gorm:"column:total_payout;type:decimal(20,2);default:0.00" json:"total_payout"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction is the append-only ledger. Amount is signed: commission
// credits are positive, payout debits negative.
type WalletTransaction struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletId    uint      `gorm:"column:wallet_id;not null;index" json:"wallet_id"`
	Amount      float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Type        string    `gorm:"column:type;size:50;not null" json:"type"`
	Reference   string    `gorm:"column:reference;size:255;index" json:"reference"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
