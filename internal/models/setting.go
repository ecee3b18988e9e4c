package models

import (
	"time"
)

// Setting keys read at request time through the settings service.
const (
	SettingMinWithdrawal        = "minimum_withdrawal"
	SettingWithdrawalFee        = "withdrawal_admin_fee"
	SettingPinRequired          = "withdrawal_pin_required"
	SettingPaymentExpiryHours   = "payment_expiry_hours"
	SettingDefaultCommission    = "default_commission_rate"
	SettingSelfReferralPolicy   = "self_referral_policy"
	SettingNotificationEndpoint = "notification_endpoint"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"column:setting_key;size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"column:setting_value;size:500" json:"value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// PaymentProvider carries the credentials for the hosted-invoice and
// disbursement providers, keyed by provider slug.
type PaymentProvider struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DisplayName     string    `gorm:"column:display_name;size:200;not null" json:"display_name"`
	Provider        string    `gorm:"column:provider;size:150;not null;uniqueIndex" json:"provider"`
	BaseUrl         string    `gorm:"column:base_url;size:150" json:"base_url"`
	SecretKey       string    `gorm:"column:secret_key;type:longtext" json:"secret_key"`
	PublicKey       string    `gorm:"column:public_key;type:longtext" json:"public_key"`
	CallbackToken   string    `gorm:"column:callback_token;size:255" json:"callback_token"`
	Status          int       `gorm:"column:status;default:0" json:"status"`
	ForDisbursement int       `gorm:"column:for_disbursement;default:0" json:"for_disbursement"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PaymentProvider) TableName() string {
	return "payment_providers"
}
