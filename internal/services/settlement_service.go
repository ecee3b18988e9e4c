package services

import (
	"encoding/json"
	"log"
	"time"

	"affiliate-service/internal/models"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Settlement notification task, consumed by the worker binary.
const TypeSettlementNotification = "settlement-notification"

type SettlementNotificationDTO struct {
	TransactionId uint    `json:"transactionId"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Amount        float64 `json:"amount"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
}

type SettlementService struct {
	DB           *gorm.DB
	Provisioning *ProvisioningService
	Commission   *CommissionService
	Queue        *asynq.Client
}

func NewSettlementService(db *gorm.DB, provisioning *ProvisioningService, commission *CommissionService, queue *asynq.Client) *SettlementService {
	return &SettlementService{
		DB:           db,
		Provisioning: provisioning,
		Commission:   commission,
		Queue:        queue,
	}
}

// Settle transitions a pending transaction to SUCCESS and runs the
// post-payment automation. Admin approval and the provider webhook both land
// here, so side effects cannot diverge between the two paths.
//
// The status transition is a conditional update; zero affected rows means the
// transaction was already settled or failed, and no side effects run. That is
// what makes a webhook retry racing an admin click harmless.
func (s *SettlementService) Settle(transactionId uint, notes, method string) (*models.Transaction, error) {
	updates := map[string]interface{}{
		"status":  models.TrxStatusSuccess,
		"paid_at": time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if method != "" {
		updates["payment_method"] = method
	}

	res := s.DB.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionId, models.TrxStatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var trx models.Transaction
		if err := s.DB.First(&trx, transactionId).Error; err != nil {
			return nil, ErrTransactionNotFound
		}
		return &trx, ErrStateConflict
	}

	var trx models.Transaction
	if err := s.DB.First(&trx, transactionId).Error; err != nil {
		return nil, err
	}

	// The payment is committed. Anything after this line is best-effort and
	// must never undo it.
	if err := s.Provisioning.Provision(trx.UserId, &trx); err != nil {
		log.Printf("Provisioning failed for transaction %d: %v", trx.ID, err)
	}

	if trx.AffiliateId != nil {
		s.postCommission(&trx)
	}

	s.enqueueNotification(&trx)

	return &trx, nil
}

func (s *SettlementService) postCommission(trx *models.Transaction) {
	var meta CheckoutMetadata
	if trx.Metadata != "" {
		if err := json.Unmarshal([]byte(trx.Metadata), &meta); err != nil {
			log.Printf("Unreadable metadata on transaction %d: %v", trx.ID, err)
		}
	}
	if meta.CommissionRate == 0 && meta.CommissionAmount == 0 {
		return
	}

	err := s.Commission.PostCommission(PostCommissionDTO{
		AffiliateId:    *trx.AffiliateId,
		TransactionId:  trx.ID,
		SaleAmount:     trx.Amount,
		CommissionRate: meta.CommissionRate,
		CommissionType: meta.CommissionType,
		Reference:      trx.InvoiceNumber,
	})
	if err != nil {
		log.Printf("Commission posting failed for transaction %d: %v", trx.ID, err)
	}
}

func (s *SettlementService) enqueueNotification(trx *models.Transaction) {
	if s.Queue == nil {
		return
	}
	payload, err := json.Marshal(SettlementNotificationDTO{
		TransactionId: trx.ID,
		InvoiceNumber: trx.InvoiceNumber,
		Amount:        trx.Amount,
		CustomerName:  trx.CustomerName,
		CustomerEmail: trx.CustomerEmail,
		CustomerPhone: trx.CustomerPhone,
	})
	if err != nil {
		return
	}
	if _, err := s.Queue.Enqueue(asynq.NewTask(TypeSettlementNotification, payload)); err != nil {
		log.Printf("Failed to enqueue settlement notification for %d: %v", trx.ID, err)
	}
}

// Reject transitions a pending transaction to FAILED. Terminal states are
// never left.
func (s *SettlementService) Reject(transactionId uint, notes string) error {
	updates := map[string]interface{}{"status": models.TrxStatusFailed}
	if notes != "" {
		updates["notes"] = notes
	}

	res := s.DB.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionId, models.TrxStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var trx models.Transaction
		if err := s.DB.First(&trx, transactionId).Error; err != nil {
			return ErrTransactionNotFound
		}
		return ErrStateConflict
	}
	return nil
}

// ExpirePending fails pending transactions past their expiry timestamp. It
// only ever touches rows still PENDING and never reverses provisioning or
// commission on settled ones.
func (s *SettlementService) ExpirePending() error {
	res := s.DB.Model(&models.Transaction{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.TrxStatusPending, time.Now()).
		Updates(map[string]interface{}{
			"status": models.TrxStatusFailed,
			"notes":  "Payment window expired",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Expired %d pending transactions", res.RowsAffected)
	}
	return nil
}

// StartScheduler initializes the cron job for the expiry sweep.
func (s *SettlementService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("*/10 * * * *", func() {
		if err := s.ExpirePending(); err != nil {
			log.Printf("Error in ExpirePending: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling ExpirePending: %v", err)
		return
	}
	c.Start()
	log.Println("Settlement scheduler started (every 10 minutes)")
}
