package services

import (
	"errors"
	"fmt"
	"strings"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

// Disbursement failure classes. The payout processor decides refund behavior
// from these, not from provider message strings.
var (
	ErrDuplicateTransfer  = errors.New("transfer reference already used")
	ErrProviderFloat      = errors.New("insufficient balance on provider account")
	ErrInvalidBankAccount = errors.New("invalid destination bank account")
)

// FlutterwaveService pushes approved payouts to the bank transfer provider.
type FlutterwaveService struct {
	DB *gorm.DB
}

func NewFlutterwaveService(db *gorm.DB) *FlutterwaveService {
	return &FlutterwaveService{DB: db}
}

func (s *FlutterwaveService) settings() (*models.PaymentProvider, error) {
	var provider models.PaymentProvider
	err := s.DB.Where("for_disbursement = ? AND status = ?", 1, 1).First(&provider).Error
	if err != nil {
		return nil, fmt.Errorf("no disbursement provider configured: %w", err)
	}
	return &provider, nil
}

type CreateTransferDTO struct {
	Amount        float64
	Reference     string
	Narration     string
	BankCode      string
	AccountNumber string
}

type TransferResult struct {
	ProviderRef string
	Status      string
}

// CreateTransfer initiates a bank transfer. The payout reference doubles as
// the provider-side idempotency key, so a retried call for the same payout
// comes back as ErrDuplicateTransfer instead of paying twice.
func (s *FlutterwaveService) CreateTransfer(data CreateTransferDTO) (*TransferResult, error) {
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization": "Bearer " + settings.SecretKey,
	}

	payload := map[string]interface{}{
		"account_bank":   data.BankCode,
		"account_number": data.AccountNumber,
		"amount":         data.Amount,
		"narration":      data.Narration,
		"reference":      data.Reference,
		"currency":       "NGN",
	}

	resp, err := common.Post(fmt.Sprintf("%s/transfers", settings.BaseUrl), payload, headers)
	if err != nil {
		return nil, fmt.Errorf("transfer request failed: %w", err)
	}

	respMap, ok := resp.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected transfer response: %v", resp)
	}

	status, _ := respMap["status"].(string)
	message, _ := respMap["message"].(string)
	if status != "success" {
		return nil, classifyTransferError(message)
	}

	result := &TransferResult{Status: status}
	if dataMap, ok := respMap["data"].(map[string]interface{}); ok {
		if id, ok := dataMap["id"].(float64); ok {
			result.ProviderRef = fmt.Sprintf("%.0f", id)
		}
		if trStatus, ok := dataMap["status"].(string); ok {
			result.Status = trStatus
		}
	}
	return result, nil
}

// GetTransfer looks up an earlier transfer by our reference. Used to recover
// the provider id when a retry hits the duplicate-reference guard.
func (s *FlutterwaveService) GetTransfer(reference string) (*TransferResult, error) {
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization": "Bearer " + settings.SecretKey,
	}

	resp, err := common.Get(fmt.Sprintf("%s/transfers?reference=%s", settings.BaseUrl, reference), headers)
	if err != nil {
		return nil, fmt.Errorf("transfer lookup failed: %w", err)
	}

	respMap, ok := resp.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected transfer lookup response: %v", resp)
	}
	items, _ := respMap["data"].([]interface{})
	if len(items) == 0 {
		return nil, fmt.Errorf("no transfer found for reference %s", reference)
	}
	first, ok := items[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected transfer entry: %v", items[0])
	}

	result := &TransferResult{}
	if id, ok := first["id"].(float64); ok {
		result.ProviderRef = fmt.Sprintf("%.0f", id)
	}
	if status, ok := first["status"].(string); ok {
		result.Status = status
	}
	return result, nil
}

func classifyTransferError(message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "duplicate"):
		return ErrDuplicateTransfer
	case strings.Contains(lower, "insufficient"):
		return ErrProviderFloat
	case strings.Contains(lower, "account"):
		return fmt.Errorf("%w: %s", ErrInvalidBankAccount, message)
	default:
		return fmt.Errorf("transfer rejected: %s", message)
	}
}
