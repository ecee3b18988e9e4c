package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Disbursement task, consumed by the worker binary.
const TypePayoutDisbursement = "payout-disbursement"

type PayoutDisbursementDTO struct {
	PayoutId uint `json:"payoutId"`
}

type PayoutService struct {
	DB       *gorm.DB
	Wallets  *WalletService
	Settings *SettingsService
	Queue    *asynq.Client
}

func NewPayoutService(db *gorm.DB, wallets *WalletService, settings *SettingsService, queue *asynq.Client) *PayoutService {
	return &PayoutService{DB: db, Wallets: wallets, Settings: settings, Queue: queue}
}

type RequestPayoutDTO struct {
	UserId        uint
	Amount        float64
	Pin           string
	BankName      string
	BankCode      string
	AccountName   string
	AccountNumber string
}

// RequestPayout validates and books a withdrawal, then hands it to the
// disbursement queue. The wallet is debited the gross amount up front inside
// the booking transaction, so the balance can never be spent twice while the
// transfer is in flight.
func (s *PayoutService) RequestPayout(data RequestPayoutDTO) (*models.Payout, error) {
	minimum := s.Settings.Float(models.SettingMinWithdrawal)
	if data.Amount < minimum {
		return nil, fmt.Errorf("%w: minimum is %.0f", ErrBelowMinimum, minimum)
	}

	if err := s.verifyPin(data.UserId, data.Pin); err != nil {
		return nil, err
	}

	fee := s.Settings.Float(models.SettingWithdrawalFee)
	net := data.Amount - fee
	if net <= 0 {
		return nil, ErrFeeExceedsAmount
	}

	wallet, err := s.Wallets.GetWallet(data.UserId)
	if err != nil {
		return nil, err
	}

	payout := models.Payout{
		WalletId:      wallet.ID,
		UserId:        data.UserId,
		Amount:        data.Amount,
		Fee:           fee,
		NetAmount:     net,
		Status:        models.PayoutStatusProcessing,
		BankName:      data.BankName,
		BankCode:      data.BankCode,
		AccountName:   data.AccountName,
		AccountNumber: data.AccountNumber,
		Reference:     uuid.NewString(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the wallet row so the availability check and the debit see a
		// consistent balance under concurrent requests.
		var locked models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, wallet.ID).Error; err != nil {
			return err
		}

		var reserved float64
		if err := tx.Model(&models.Payout{}).
			Where("wallet_id = ? AND status IN ?", wallet.ID, []string{
				models.PayoutStatusPending,
				models.PayoutStatusProcessing,
				models.PayoutStatusApproved,
			}).
			Select("COALESCE(SUM(amount), 0)").Scan(&reserved).Error; err != nil {
			return err
		}

		if locked.Balance-reserved < data.Amount {
			return ErrInsufficientBalance
		}

		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Updates(map[string]interface{}{
				"balance":      gorm.Expr("balance - ?", data.Amount),
				"total_payout": gorm.Expr("total_payout + ?", data.Amount),
			}).Error; err != nil {
			return err
		}

		ledger := models.WalletTransaction{
			WalletId:    wallet.ID,
			Amount:      -data.Amount,
			Type:        models.WalletTrxPayout,
			Reference:   payout.Reference,
			Description: fmt.Sprintf("Withdrawal to %s %s", payout.BankName, payout.AccountNumber),
		}
		return tx.Create(&ledger).Error
	})
	if err != nil {
		return nil, err
	}

	s.enqueueDisbursement(payout.ID)
	return &payout, nil
}

func (s *PayoutService) enqueueDisbursement(payoutId uint) {
	if s.Queue == nil {
		return
	}
	payload, err := json.Marshal(PayoutDisbursementDTO{PayoutId: payoutId})
	if err != nil {
		return
	}
	task := asynq.NewTask(TypePayoutDisbursement, payload)
	if _, err := s.Queue.Enqueue(task, asynq.Queue("critical"), asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)); err != nil {
		log.Printf("Failed to enqueue disbursement for payout %d: %v", payoutId, err)
	}
}

func (s *PayoutService) verifyPin(userId uint, pin string) error {
	if !s.Settings.Bool(models.SettingPinRequired) {
		return nil
	}

	var record models.UserPin
	if err := s.DB.Where("user_id = ?", userId).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrPinNotSet
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(record.PinHash), []byte(pin)) != nil {
		return ErrInvalidPin
	}
	return nil
}

// SetPin stores or replaces the user's withdrawal PIN.
func (s *PayoutService) SetPin(userId uint, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var record models.UserPin
	err = s.DB.Where("user_id = ?", userId).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return s.DB.Create(&models.UserPin{UserId: userId, PinHash: string(hash)}).Error
	}
	if err != nil {
		return err
	}
	return s.DB.Model(&record).Update("pin_hash", string(hash)).Error
}

func (s *PayoutService) GetPayout(payoutId uint) (*models.Payout, error) {
	var payout models.Payout
	if err := s.DB.First(&payout, payoutId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

type UpdatePayoutStatusDTO struct {
	PayoutId  uint
	Status    string
	Comment   string
	UpdatedBy string
}

// UpdateStatus handles manual admin review of a payout. Moving a payout to
// REJECTED refunds the wallet; any other transition writes the status with a
// terminal-state predicate, so a payout the worker already paid or refunded
// cannot be revived and re-disbursed by a concurrent review.
func (s *PayoutService) UpdateStatus(data UpdatePayoutStatusDTO) (*models.Payout, error) {
	payout, err := s.GetPayout(data.PayoutId)
	if err != nil {
		return nil, err
	}

	if data.Status == models.PayoutStatusRejected {
		if err := s.RefundPayout(payout.ID, data.Comment); err != nil {
			return nil, err
		}
		return s.GetPayout(payout.ID)
	}

	res := s.DB.Model(&models.Payout{}).
		Where("id = ? AND status NOT IN ?", payout.ID, []string{
			models.PayoutStatusPaid,
			models.PayoutStatusRejected,
		}).
		Updates(map[string]interface{}{
			"status":     data.Status,
			"comment":    data.Comment,
			"updated_by": data.UpdatedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStateConflict
	}

	if data.Status == models.PayoutStatusApproved {
		s.enqueueDisbursement(payout.ID)
	}
	return s.GetPayout(payout.ID)
}

// RefundPayout marks a payout REJECTED and returns the gross amount to the
// wallet. The status flip is conditional so a double refund cannot credit
// twice.
func (s *PayoutService) RefundPayout(payoutId uint, comment string) error {
	payout, err := s.GetPayout(payoutId)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status NOT IN ?", payoutId, []string{
				models.PayoutStatusPaid,
				models.PayoutStatusRejected,
			}).
			Updates(map[string]interface{}{
				"status":  models.PayoutStatusRejected,
				"comment": comment,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		if err := tx.Model(&models.Wallet{}).Where("id = ?", payout.WalletId).
			Updates(map[string]interface{}{
				"balance":      gorm.Expr("balance + ?", payout.Amount),
				"total_payout": gorm.Expr("total_payout - ?", payout.Amount),
			}).Error; err != nil {
			return err
		}

		ledger := models.WalletTransaction{
			WalletId:    payout.WalletId,
			Amount:      payout.Amount,
			Type:        models.WalletTrxPayoutReversal,
			Reference:   payout.Reference,
			Description: fmt.Sprintf("Reversal of withdrawal %s: %s", payout.Reference, comment),
		}
		return tx.Create(&ledger).Error
	})
}

type PayoutQueryDTO struct {
	UserId uint
	Status string
	Page   int
	Limit  int
}

func (s *PayoutService) ListPayouts(data PayoutQueryDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.Payout{})
	if data.UserId != 0 {
		query = query.Where("user_id = ?", data.UserId)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	query.Count(&total)

	var payouts []models.Payout
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payouts).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(payouts, total, page, limit, "Payouts fetched"), nil
}
