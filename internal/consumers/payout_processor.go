package consumers

import (
	"errors"
	"fmt"
	"log"

	"affiliate-service/internal/models"
	"affiliate-service/internal/services"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

// PayoutProcessor runs the queued jobs: bank disbursements for booked
// payouts and settlement notifications.
type PayoutProcessor struct {
	DB        *gorm.DB
	Payouts   *services.PayoutService
	Transfers *services.FlutterwaveService
	Settings  *services.SettingsService
}

func NewPayoutProcessor(db *gorm.DB, payouts *services.PayoutService, transfers *services.FlutterwaveService, settings *services.SettingsService) *PayoutProcessor {
	return &PayoutProcessor{
		DB:        db,
		Payouts:   payouts,
		Transfers: transfers,
		Settings:  settings,
	}
}

// ProcessDisbursement pushes one booked payout to the transfer provider.
// Returning an error requeues the job, so only transient failures may return
// one; permanent rejections refund the wallet instead.
func (p *PayoutProcessor) ProcessDisbursement(data services.PayoutDisbursementDTO) error {
	payout, err := p.Payouts.GetPayout(data.PayoutId)
	if err != nil {
		log.Printf("Disbursement job for unknown payout %d: %v", data.PayoutId, err)
		return nil
	}
	if payout.Status != models.PayoutStatusProcessing && payout.Status != models.PayoutStatusApproved {
		log.Printf("Skipping disbursement for payout %d in state %s", payout.ID, payout.Status)
		return nil
	}

	result, err := p.Transfers.CreateTransfer(services.CreateTransferDTO{
		Amount:        payout.NetAmount,
		Reference:     payout.Reference,
		Narration:     fmt.Sprintf("Affiliate payout %s", payout.Reference),
		BankCode:      payout.BankCode,
		AccountNumber: payout.AccountNumber,
	})

	switch {
	case err == nil:
		return p.DB.Model(payout).Updates(map[string]interface{}{
			"status":       models.PayoutStatusPaid,
			"provider_ref": result.ProviderRef,
		}).Error
	case errors.Is(err, services.ErrDuplicateTransfer):
		// The provider already accepted this reference on an earlier attempt;
		// recover its id so the payout still closes out.
		log.Printf("Payout %d already submitted: %v", payout.ID, err)
		if existing, lookupErr := p.Transfers.GetTransfer(payout.Reference); lookupErr == nil {
			return p.DB.Model(payout).Updates(map[string]interface{}{
				"status":       models.PayoutStatusPaid,
				"provider_ref": existing.ProviderRef,
			}).Error
		}
		return nil
	case errors.Is(err, services.ErrProviderFloat):
		// Transient on our side: top up the float and let the retry run.
		return err
	default:
		log.Printf("Payout %d rejected by provider: %v", payout.ID, err)
		if refundErr := p.Payouts.RefundPayout(payout.ID, err.Error()); refundErr != nil {
			return refundErr
		}
		return nil
	}
}

// ProcessNotification posts a settlement event to the configured webhook
// endpoint. Without one it just logs; settlement never depends on delivery.
func (p *PayoutProcessor) ProcessNotification(data services.SettlementNotificationDTO) error {
	endpoint := p.Settings.Get(models.SettingNotificationEndpoint)
	if endpoint == "" {
		log.Printf("Settlement notification for %s (no endpoint configured)", data.InvoiceNumber)
		return nil
	}

	payload := map[string]interface{}{
		"event":         "transaction.settled",
		"transactionId": data.TransactionId,
		"invoiceNumber": data.InvoiceNumber,
		"amount":        data.Amount,
		"customerName":  data.CustomerName,
		"customerEmail": data.CustomerEmail,
		"customerPhone": data.CustomerPhone,
	}
	if _, err := common.Post(endpoint, payload, nil); err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	return nil
}
