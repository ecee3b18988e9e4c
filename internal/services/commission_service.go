package services

import (
	"fmt"
	"math"

	"affiliate-service/internal/models"

	"gorm.io/gorm"
)

type CommissionService struct {
	DB      *gorm.DB
	Wallets *WalletService
}

func NewCommissionService(db *gorm.DB, wallets *WalletService) *CommissionService {
	return &CommissionService{DB: db, Wallets: wallets}
}

// ComputeCommission returns the commission on a sale amount. PERCENTAGE
// rounds half away from zero; FLAT pays the rate regardless of sale price.
func ComputeCommission(amount, rate float64, commissionType string) float64 {
	if commissionType == models.DiscountTypeFlat {
		return rate
	}
	return math.Round(amount * rate / 100)
}

type PostCommissionDTO struct {
	AffiliateId    uint
	TransactionId  uint
	SaleAmount     float64
	CommissionRate float64
	CommissionType string
	Reference      string
}

// PostCommission credits an affiliate for one settled transaction, at most
// once. The conversion row is the idempotency guard: its unique index on
// transaction_id makes a concurrent duplicate fail the whole transaction
// before any wallet mutation commits.
func (s *CommissionService) PostCommission(data PostCommissionDTO) error {
	var existing models.AffiliateConversion
	err := s.DB.Where("transaction_id = ?", data.TransactionId).First(&existing).Error
	if err == nil {
		// Already posted; settlement retries are no-ops.
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var profile models.AffiliateProfile
	if err := s.DB.First(&profile, data.AffiliateId).Error; err != nil {
		return fmt.Errorf("affiliate %d not found: %w", data.AffiliateId, err)
	}

	wallet, err := s.Wallets.EnsureWallet(profile.UserId)
	if err != nil {
		return err
	}

	commission := ComputeCommission(data.SaleAmount, data.CommissionRate, data.CommissionType)
	if commission <= 0 {
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		conversion := models.AffiliateConversion{
			AffiliateId:      data.AffiliateId,
			TransactionId:    data.TransactionId,
			CommissionAmount: commission,
			CommissionRate:   data.CommissionRate,
			CommissionType:   data.CommissionType,
		}
		if err := tx.Create(&conversion).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Updates(map[string]interface{}{
				"balance":        gorm.Expr("balance + ?", commission),
				"total_earnings": gorm.Expr("total_earnings + ?", commission),
			}).Error; err != nil {
			return err
		}

		ledger := models.WalletTransaction{
			WalletId:    wallet.ID,
			Amount:      commission,
			Type:        models.WalletTrxCommission,
			Reference:   data.Reference,
			Description: fmt.Sprintf("Commission for transaction %d", data.TransactionId),
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		return tx.Model(&models.AffiliateProfile{}).Where("id = ?", data.AffiliateId).
			Updates(map[string]interface{}{
				"total_earnings":    gorm.Expr("total_earnings + ?", commission),
				"total_conversions": gorm.Expr("total_conversions + ?", 1),
			}).Error
	})
}
