package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

// XenditService creates hosted payment invoices and validates inbound
// callbacks against the configured callback token.
type XenditService struct {
	DB *gorm.DB
}

func NewXenditService(db *gorm.DB) *XenditService {
	return &XenditService{DB: db}
}

func (s *XenditService) settings() (*models.PaymentProvider, error) {
	var provider models.PaymentProvider
	err := s.DB.Where("provider = ? AND status = ?", "xendit", 1).First(&provider).Error
	if err != nil {
		return nil, fmt.Errorf("xendit has not been configured: %w", err)
	}
	return &provider, nil
}

type CreateInvoiceDTO struct {
	ExternalId  string
	Amount      float64
	Description string
	PayerEmail  string
	ExpirySec   int
}

type InvoiceResult struct {
	InvoiceId  string
	InvoiceUrl string
	ExpiryDate string
}

// CreateInvoice requests a hosted payment page. The HTTP call is bounded by
// the shared client timeout; on any failure the caller keeps its PENDING
// transaction and reports an explicit error.
func (s *XenditService) CreateInvoice(data CreateInvoiceDTO) (*InvoiceResult, error) {
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(settings.SecretKey + ":"))
	headers := map[string]string{
		"Authorization": "Basic " + auth,
	}

	payload := map[string]interface{}{
		"external_id":      data.ExternalId,
		"amount":           data.Amount,
		"description":      data.Description,
		"payer_email":      data.PayerEmail,
		"invoice_duration": data.ExpirySec,
	}

	resp, err := common.Post(fmt.Sprintf("%s/v2/invoices", settings.BaseUrl), payload, headers)
	if err != nil {
		return nil, fmt.Errorf("xendit create invoice failed: %w", err)
	}

	respMap, ok := resp.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected xendit response: %v", resp)
	}

	id, _ := respMap["id"].(string)
	url, _ := respMap["invoice_url"].(string)
	expiry, _ := respMap["expiry_date"].(string)
	if id == "" || url == "" {
		msg, _ := respMap["message"].(string)
		return nil, fmt.Errorf("xendit rejected invoice: %s", msg)
	}

	return &InvoiceResult{InvoiceId: id, InvoiceUrl: url, ExpiryDate: expiry}, nil
}

// VerifyCallbackToken checks the x-callback-token header of an inbound
// webhook against the configured value.
func (s *XenditService) VerifyCallbackToken(token string) bool {
	settings, err := s.settings()
	if err != nil {
		return false
	}
	return settings.CallbackToken != "" && settings.CallbackToken == token
}

// InvoiceCallbackDTO is the subset of the provider webhook payload the
// settlement path needs.
type InvoiceCallbackDTO struct {
	Id         string  `json:"id"`
	ExternalId string  `json:"external_id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
}

// LogCallback records the raw webhook for auditing.
func (s *XenditService) LogCallback(request interface{}, response string, status int, trxRef string) {
	reqBytes, _ := json.Marshal(request)
	entry := models.CallbackLog{
		Request:       string(reqBytes),
		Response:      response,
		Status:        status,
		RequestType:   "Webhook",
		TransactionId: trxRef,
		PaymentMethod: "Xendit",
	}
	s.DB.Create(&entry)
}

// FindByInvoice resolves the transaction a callback refers to, by our
// external id (the invoice number) or the provider's invoice id.
func (s *XenditService) FindByInvoice(externalId, providerId string) (*models.Transaction, error) {
	var trx models.Transaction
	err := s.DB.Where("invoice_number = ? OR payment_ref = ?", externalId, providerId).First(&trx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}
