package services

import (
	"encoding/json"
	"time"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

type ReportingService struct {
	DB *gorm.DB
}

func NewReportingService(db *gorm.DB) *ReportingService {
	return &ReportingService{DB: db}
}

type TransactionQueryDTO struct {
	UserId      uint
	AffiliateId uint
	Status      string
	Type        string
	From        *time.Time
	To          *time.Time
	Page        int
	Limit       int
}

func (s *ReportingService) ListTransactions(data TransactionQueryDTO) (common.PaginationResult, error) {
	limit, page, offset := normalizePage(data.Page, data.Limit)

	query := s.DB.Model(&models.Transaction{})
	if data.UserId != 0 {
		query = query.Where("user_id = ?", data.UserId)
	}
	if data.AffiliateId != 0 {
		query = query.Where("affiliate_id = ?", data.AffiliateId)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}
	if data.Type != "" {
		query = query.Where("type = ?", data.Type)
	}
	if data.From != nil {
		query = query.Where("created_at >= ?", data.From)
	}
	if data.To != nil {
		query = query.Where("created_at <= ?", data.To)
	}

	var total int64
	query.Count(&total)

	var transactions []models.Transaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(transactions, total, page, limit, "Transactions fetched"), nil
}

func (s *ReportingService) GetTransaction(transactionId uint) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.DB.First(&trx, transactionId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

type ConversionQueryDTO struct {
	AffiliateId uint
	Page        int
	Limit       int
}

func (s *ReportingService) ListConversions(data ConversionQueryDTO) (common.PaginationResult, error) {
	limit, page, offset := normalizePage(data.Page, data.Limit)

	query := s.DB.Model(&models.AffiliateConversion{})
	if data.AffiliateId != 0 {
		query = query.Where("affiliate_id = ?", data.AffiliateId)
	}

	var total int64
	query.Count(&total)

	var conversions []models.AffiliateConversion
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&conversions).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(conversions, total, page, limit, "Conversions fetched"), nil
}

// AffiliateSummary aggregates one affiliate's lifetime figures for the
// dashboard endpoint.
type AffiliateSummary struct {
	AffiliateId      uint    `json:"affiliateId"`
	AffiliateCode    string  `json:"affiliateCode"`
	TotalClicks      int     `json:"totalClicks"`
	TotalConversions int     `json:"totalConversions"`
	TotalEarnings    float64 `json:"totalEarnings"`
	PendingEarnings  float64 `json:"pendingEarnings"`
	WalletBalance    float64 `json:"walletBalance"`
}

func (s *ReportingService) GetAffiliateSummary(affiliateId uint) (*AffiliateSummary, error) {
	var profile models.AffiliateProfile
	if err := s.DB.First(&profile, affiliateId).Error; err != nil {
		return nil, err
	}

	// Commission already computed on pending transactions is not yet in the
	// wallet; surface it so affiliates see money that is on its way. The
	// figure is the precomputed commission from each transaction's metadata,
	// not the gross sale amount.
	var rows []models.Transaction
	s.DB.Select("metadata").
		Where("affiliate_id = ? AND status = ?", affiliateId, models.TrxStatusPending).
		Find(&rows)

	var pending float64
	for _, row := range rows {
		var meta CheckoutMetadata
		if json.Unmarshal([]byte(row.Metadata), &meta) == nil {
			pending += meta.CommissionAmount
		}
	}

	summary := &AffiliateSummary{
		AffiliateId:      profile.ID,
		AffiliateCode:    profile.AffiliateCode,
		TotalClicks:      profile.TotalClicks,
		TotalConversions: profile.TotalConversions,
		TotalEarnings:    profile.TotalEarnings,
		PendingEarnings:  pending,
	}

	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", profile.UserId).First(&wallet).Error; err == nil {
		summary.WalletBalance = wallet.Balance
	}

	return summary, nil
}

func normalizePage(page, limit int) (int, int, int) {
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	return limit, page, (page - 1) * limit
}
