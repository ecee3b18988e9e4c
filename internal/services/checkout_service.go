package services

import (
	"encoding/json"
	"log"
	"time"

	"affiliate-service/internal/database"
	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// First invoice number ever issued; the counter is clamped so receipts never
// start below it.
const invoiceFloor = 1000

type CheckoutService struct {
	DB           *gorm.DB
	Catalog      *CatalogService
	Coupons      *CouponService
	Attribution  *AttributionService
	Provisioning *ProvisioningService
	Settings     *SettingsService
	Invoices     *XenditService
}

func NewCheckoutService(
	db *gorm.DB,
	catalog *CatalogService,
	coupons *CouponService,
	attribution *AttributionService,
	provisioning *ProvisioningService,
	settings *SettingsService,
	invoices *XenditService,
) *CheckoutService {
	return &CheckoutService{
		DB:           db,
		Catalog:      catalog,
		Coupons:      coupons,
		Attribution:  attribution,
		Provisioning: provisioning,
		Settings:     settings,
		Invoices:     invoices,
	}
}

type CreateCheckoutDTO struct {
	UserId         uint
	ItemType       string
	ItemId         uint
	CouponCode     string
	ReferralCookie string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
}

type CheckoutResult struct {
	TransactionId uint    `json:"transaction_id"`
	InvoiceNumber string  `json:"invoice_number"`
	PaymentUrl    string  `json:"payment_url"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}

// CheckoutMetadata is the commission precomputation stored on the pending
// transaction; the settlement handler posts from it instead of re-deriving
// rates that may have changed since purchase.
type CheckoutMetadata struct {
	ItemName         string  `json:"item_name"`
	CommissionRate   float64 `json:"commission_rate"`
	CommissionType   string  `json:"commission_type"`
	CommissionAmount float64 `json:"commission_amount"`
}

// CreateCheckout validates the item and coupon, attributes an affiliate,
// creates the transaction and, for paid purchases, requests a hosted payment
// page. Wallets are never touched here; commission is only precomputed.
func (s *CheckoutService) CreateCheckout(data CreateCheckoutDTO) (*CheckoutResult, error) {
	item, err := s.Catalog.GetItem(data.ItemType, data.ItemId)
	if err != nil {
		return nil, err
	}
	if !item.Purchasable {
		return nil, ErrItemNotPurchasable
	}

	if err := s.checkExistingEntitlement(data.UserId, item); err != nil {
		return nil, err
	}

	var discount float64
	var couponId, couponAffiliateId *uint
	if data.CouponCode != "" {
		quote, err := s.Coupons.Validate(data.CouponCode, item.Price)
		if err != nil {
			return nil, err
		}
		discount = quote.DiscountAmount
		couponId = &quote.CouponId
		couponAffiliateId = quote.AffiliateId
	}

	amount := item.Price - discount
	if amount < 0 {
		amount = 0
	}

	affiliateId := s.Attribution.Resolve(couponAffiliateId, data.ReferralCookie, data.UserId, data.CustomerName)
	metadata := s.buildMetadata(item, affiliateId, amount)

	if amount == 0 {
		return s.createFreeCheckout(data, item, discount, couponId, affiliateId, metadata)
	}
	return s.createPaidCheckout(data, item, amount, discount, couponId, affiliateId, metadata)
}

// checkExistingEntitlement rejects purchases of entitlements the user already
// holds. A membership purchase is also blocked by any other active
// membership (single active membership per user).
func (s *CheckoutService) checkExistingEntitlement(userId uint, item *CatalogItem) error {
	switch item.Type {
	case models.TrxTypeMembership, models.TrxTypeSupplierMembership:
		var count int64
		s.DB.Model(&models.UserMembership{}).
			Where("user_id = ? AND status = ? AND end_date > ?", userId, models.MembershipStatusActive, time.Now()).
			Count(&count)
		if count > 0 {
			return ErrAlreadyMember
		}

	case models.TrxTypeCourse:
		var count int64
		s.DB.Model(&models.CourseEnrollment{}).
			Where("user_id = ? AND course_id = ?", userId, item.ID).
			Count(&count)
		if count > 0 {
			return ErrAlreadyEnrolled
		}

	case models.TrxTypeProduct:
		var count int64
		s.DB.Model(&models.UserProduct{}).
			Where("user_id = ? AND product_id = ?", userId, item.ID).
			Count(&count)
		if count > 0 {
			return ErrAlreadyOwned
		}
	}
	return nil
}

func (s *CheckoutService) buildMetadata(item *CatalogItem, affiliateId *uint, amount float64) string {
	meta := CheckoutMetadata{ItemName: item.Name}
	if affiliateId != nil {
		rate := item.CommissionRate
		ctype := item.CommissionType
		if profile, err := s.Attribution.GetProfile(*affiliateId); err == nil && profile.CommissionRate > 0 {
			rate = profile.CommissionRate
			ctype = profile.CommissionType
		}
		if rate == 0 {
			rate = s.Settings.Float(models.SettingDefaultCommission)
			ctype = models.DiscountTypePercentage
		}
		meta.CommissionRate = rate
		meta.CommissionType = ctype
		meta.CommissionAmount = ComputeCommission(amount, rate, ctype)
	}
	encoded, _ := json.Marshal(meta)
	return string(encoded)
}

// createFreeCheckout writes a settled transaction and provisions the
// entitlement immediately; no payment provider is involved.
func (s *CheckoutService) createFreeCheckout(
	data CreateCheckoutDTO, item *CatalogItem,
	discount float64, couponId, affiliateId *uint, metadata string,
) (*CheckoutResult, error) {
	now := time.Now()
	trx := models.Transaction{
		UserId:        data.UserId,
		Type:          item.Type,
		ItemId:        item.ID,
		Amount:        0,
		Discount:      discount,
		Status:        models.TrxStatusSuccess,
		PaymentMethod: models.PaymentMethodFree,
		AffiliateId:   affiliateId,
		CouponId:      couponId,
		CustomerName:  data.CustomerName,
		CustomerEmail: data.CustomerEmail,
		CustomerPhone: data.CustomerPhone,
		Metadata:      metadata,
		PaidAt:        &now,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		seq, err := s.nextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		trx.InvoiceNumber = common.FormatInvoiceNumber(seq)

		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		if couponId != nil {
			if err := s.Coupons.Consume(tx, *couponId); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The transaction is committed; a provisioning failure is logged, never
	// surfaced as a checkout error.
	if err := s.Provisioning.Provision(data.UserId, &trx); err != nil {
		log.Printf("Provisioning failed for transaction %d: %v", trx.ID, err)
	}

	return &CheckoutResult{
		TransactionId: trx.ID,
		InvoiceNumber: trx.InvoiceNumber,
		Amount:        0,
		Status:        trx.Status,
	}, nil
}

func (s *CheckoutService) createPaidCheckout(
	data CreateCheckoutDTO, item *CatalogItem,
	amount, discount float64, couponId, affiliateId *uint, metadata string,
) (*CheckoutResult, error) {
	expiryHours := s.Settings.Int(models.SettingPaymentExpiryHours)
	if expiryHours <= 0 {
		expiryHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expiryHours) * time.Hour)

	trx := models.Transaction{
		UserId:        data.UserId,
		Type:          item.Type,
		ItemId:        item.ID,
		Amount:        amount,
		Discount:      discount,
		Status:        models.TrxStatusPending,
		PaymentMethod: models.PaymentMethodInvoice,
		AffiliateId:   affiliateId,
		CouponId:      couponId,
		CustomerName:  data.CustomerName,
		CustomerEmail: data.CustomerEmail,
		CustomerPhone: data.CustomerPhone,
		Metadata:      metadata,
		ExpiresAt:     &expiresAt,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		seq, err := s.nextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		trx.InvoiceNumber = common.FormatInvoiceNumber(seq)

		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		if couponId != nil {
			if err := s.Coupons.Consume(tx, *couponId); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.Invoices.CreateInvoice(CreateInvoiceDTO{
		ExternalId:  trx.InvoiceNumber,
		Amount:      amount,
		Description: item.Name,
		PayerEmail:  data.CustomerEmail,
		ExpirySec:   expiryHours * 3600,
	})
	if err != nil {
		// The pending transaction stays retryable, but the caller must see an
		// explicit failure rather than a broken link.
		log.Printf("Payment link creation failed for %s: %v", trx.InvoiceNumber, err)
		return nil, ErrPaymentLinkFailed
	}

	if err := s.DB.Model(&trx).Updates(map[string]interface{}{
		"payment_url": invoice.InvoiceUrl,
		"payment_ref": invoice.InvoiceId,
	}).Error; err != nil {
		return nil, err
	}

	return &CheckoutResult{
		TransactionId: trx.ID,
		InvoiceNumber: trx.InvoiceNumber,
		PaymentUrl:    invoice.InvoiceUrl,
		Amount:        amount,
		Status:        trx.Status,
	}, nil
}

// nextInvoiceNumber allocates the next sequential invoice number from a
// locked counter row, clamped to the floor. Migrate seeds the row; if the
// schema was created without it, the fixed-key seed lets exactly one of any
// concurrent bootstrappers win.
func (s *CheckoutService) nextInvoiceNumber(tx *gorm.DB) (int64, error) {
	var counter models.InvoiceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		if err := database.SeedInvoiceCounter(tx); err != nil {
			return 0, err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter).Error
	}
	if err != nil {
		return 0, err
	}

	next := counter.Value + 1
	if next < invoiceFloor {
		next = invoiceFloor
	}

	if err := tx.Model(&models.InvoiceCounter{}).Where("id = ?", counter.ID).
		UpdateColumn("value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
