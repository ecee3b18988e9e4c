package services

import (
	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// EnsureWallet returns the user's wallet, creating an empty one on first use.
func (s *WalletService) EnsureWallet(userId uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.DB.Where(models.Wallet{UserId: userId}).FirstOrCreate(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *WalletService) GetWallet(userId uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", userId).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

type LedgerQueryDTO struct {
	UserId uint
	Type   string
	Page   int
	Limit  int
}

// GetLedger lists the wallet's append-only transaction rows, newest first.
func (s *WalletService) GetLedger(data LedgerQueryDTO) (common.PaginationResult, error) {
	wallet, err := s.GetWallet(data.UserId)
	if err != nil {
		return common.PaginationResult{}, err
	}

	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.WalletTransaction{}).Where("wallet_id = ?", wallet.ID)
	if data.Type != "" {
		query = query.Where("type = ?", data.Type)
	}

	var total int64
	query.Count(&total)

	var entries []models.WalletTransaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(entries, total, page, limit, "Ledger fetched"), nil
}

// LedgerSum returns the sum of all ledger rows for a wallet. The balance
// column must always equal this figure.
func (s *WalletService) LedgerSum(walletId uint) (float64, error) {
	var sum float64
	err := s.DB.Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", walletId).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}
