package services

import (
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"affiliate-service/internal/database"
	"affiliate-service/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NOTE: These tests require a running MySQL instance.
// Set DATABASE_URL to run them; they skip otherwise.

var testDB *gorm.DB

func setup() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("Skipping DB tests: DATABASE_URL not set")
		return
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return
	}

	testDB.AutoMigrate(
		&models.Membership{},
		&models.Product{},
		&models.Course{},
		&models.MembershipEntitlement{},
		&models.Coupon{},
		&models.AffiliateProfile{},
		&models.AffiliateConversion{},
		&models.Transaction{},
		&models.InvoiceCounter{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Payout{},
		&models.UserPin{},
		&models.UserMembership{},
		&models.CourseEnrollment{},
		&models.UserProduct{},
		&models.GroupMember{},
		&models.Setting{},
		&models.PaymentProvider{},
		&models.CallbackLog{},
	)
}

func cleanup() {
	if testDB == nil {
		return
	}
	for _, table := range []string{
		"callback_logs", "payment_providers", "settings",
		"group_members", "user_products", "course_enrollments", "user_memberships",
		"user_pins", "payouts", "wallet_transactions", "wallets",
		"invoice_counters", "transactions",
		"affiliate_conversions", "affiliate_profiles", "coupons",
		"membership_entitlements", "courses", "products", "memberships",
	} {
		testDB.Exec("DELETE FROM " + table)
	}
}

func newCheckoutService(db *gorm.DB) *CheckoutService {
	settings := NewSettingsService(db)
	return NewCheckoutService(
		db,
		NewCatalogService(db),
		NewCouponService(db),
		NewAttributionService(db, settings),
		NewProvisioningService(db),
		settings,
		NewXenditService(db),
	)
}

func TestFreeCheckoutSettlesImmediately(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Intro Course", Price: 0, IsPublished: true}
	testDB.Create(&course)

	svc := newCheckoutService(testDB)
	result, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId:        10,
		ItemType:      models.TrxTypeCourse,
		ItemId:        course.ID,
		CustomerName:  "Budi",
		CustomerEmail: "budi@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCheckout failed: %v", err)
	}

	if result.Status != models.TrxStatusSuccess {
		t.Errorf("Expected SUCCESS, got %s", result.Status)
	}
	if result.InvoiceNumber != "INV1000" {
		t.Errorf("Expected INV1000, got %s", result.InvoiceNumber)
	}

	var trx models.Transaction
	testDB.First(&trx, result.TransactionId)
	if trx.PaymentMethod != models.PaymentMethodFree {
		t.Errorf("Expected FREE payment method, got %s", trx.PaymentMethod)
	}
	if trx.PaidAt == nil {
		t.Error("Expected paid_at to be set")
	}

	var enrollments int64
	testDB.Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", 10, course.ID).Count(&enrollments)
	if enrollments != 1 {
		t.Errorf("Expected 1 enrollment, got %d", enrollments)
	}
}

func TestPaidCheckoutAppliesCouponDiscount(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	membership := models.Membership{Name: "Gold", Price: 100000, DurationDays: 30, IsActive: true}
	testDB.Create(&membership)
	testDB.Create(&models.Coupon{
		Code: "SAVE10", DiscountType: models.DiscountTypePercentage,
		DiscountValue: 10, UsageLimit: 5, IsActive: true,
	})

	svc := newCheckoutService(testDB)
	_, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId:        11,
		ItemType:      models.TrxTypeMembership,
		ItemId:        membership.ID,
		CouponCode:    "SAVE10",
		CustomerName:  "Sari",
		CustomerEmail: "sari@example.com",
	})

	// No payment provider is configured, so the hosted invoice call fails;
	// the pending transaction must still be booked with the discount applied.
	if err != ErrPaymentLinkFailed {
		t.Fatalf("Expected ErrPaymentLinkFailed, got %v", err)
	}

	var trx models.Transaction
	if err := testDB.Where("user_id = ?", 11).First(&trx).Error; err != nil {
		t.Fatalf("Expected pending transaction to exist: %v", err)
	}
	if trx.Amount != 90000 {
		t.Errorf("Expected amount 90000, got %f", trx.Amount)
	}
	if trx.Discount != 10000 {
		t.Errorf("Expected discount 10000, got %f", trx.Discount)
	}
	if trx.Status != models.TrxStatusPending {
		t.Errorf("Expected PENDING, got %s", trx.Status)
	}
	if trx.ExpiresAt == nil {
		t.Error("Expected expires_at to be set")
	}

	var coupon models.Coupon
	testDB.Where("code = ?", "SAVE10").First(&coupon)
	if coupon.UsageCount != 1 {
		t.Errorf("Expected usage_count 1, got %d", coupon.UsageCount)
	}
}

func TestCheckoutAttributesCouponAffiliate(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	profile := models.AffiliateProfile{
		UserId: 16, AffiliateCode: "AFCOUPON", IsActive: true,
		CommissionRate: 30, CommissionType: models.DiscountTypePercentage,
	}
	testDB.Create(&profile)
	course := models.Course{Title: "Pro Course", Price: 499000, IsPublished: true}
	testDB.Create(&course)
	testDB.Create(&models.Coupon{
		Code: "PARTNER10", DiscountType: models.DiscountTypePercentage,
		DiscountValue: 10, IsActive: true, AffiliateId: &profile.ID,
	})

	svc := newCheckoutService(testDB)
	_, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId:        17,
		ItemType:      models.TrxTypeCourse,
		ItemId:        course.ID,
		CouponCode:    "PARTNER10",
		CustomerName:  "Hana",
		CustomerEmail: "hana@example.com",
	})
	if err != ErrPaymentLinkFailed {
		t.Fatalf("Expected ErrPaymentLinkFailed, got %v", err)
	}

	var trx models.Transaction
	if err := testDB.Where("user_id = ?", 17).First(&trx).Error; err != nil {
		t.Fatalf("Expected pending transaction to exist: %v", err)
	}
	if trx.AffiliateId == nil || *trx.AffiliateId != profile.ID {
		t.Fatalf("Expected transaction attributed to affiliate %d, got %v", profile.ID, trx.AffiliateId)
	}

	// Commission is precomputed on the discounted amount at the affiliate's
	// own rate.
	var meta CheckoutMetadata
	if err := json.Unmarshal([]byte(trx.Metadata), &meta); err != nil {
		t.Fatalf("Metadata not parseable: %v", err)
	}
	if meta.CommissionAmount != 134700 {
		t.Errorf("Expected commission 134700, got %f", meta.CommissionAmount)
	}
}

func TestFullDiscountCouponTakesFreePath(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	product := models.Product{Name: "Template Pack", Price: 25000, IsActive: true}
	testDB.Create(&product)
	testDB.Create(&models.Coupon{
		Code: "COMP100", DiscountType: models.DiscountTypeFlat,
		DiscountValue: 25000, IsActive: true,
	})

	svc := newCheckoutService(testDB)
	result, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId:        12,
		ItemType:      models.TrxTypeProduct,
		ItemId:        product.ID,
		CouponCode:    "COMP100",
		CustomerName:  "Dewi",
		CustomerEmail: "dewi@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCheckout failed: %v", err)
	}

	if result.Amount != 0 || result.Status != models.TrxStatusSuccess {
		t.Errorf("Expected settled zero-amount checkout, got amount=%f status=%s", result.Amount, result.Status)
	}

	var owned int64
	testDB.Model(&models.UserProduct{}).
		Where("user_id = ? AND product_id = ?", 12, product.ID).Count(&owned)
	if owned != 1 {
		t.Errorf("Expected product ownership, got %d rows", owned)
	}
}

func TestMembershipCheckoutBlockedByActiveMembership(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	gold := models.Membership{Name: "Gold", Price: 100000, DurationDays: 30, IsActive: true}
	silver := models.Membership{Name: "Silver", Price: 50000, DurationDays: 30, IsActive: true}
	testDB.Create(&gold)
	testDB.Create(&silver)

	testDB.Create(&models.UserMembership{
		UserId: 13, MembershipId: gold.ID,
		Status:    models.MembershipStatusActive,
		StartDate: time.Now(), EndDate: time.Now().Add(720 * time.Hour),
		IsActive: true,
	})

	svc := newCheckoutService(testDB)
	_, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId:        13,
		ItemType:      models.TrxTypeMembership,
		ItemId:        silver.ID,
		CustomerName:  "Agus",
		CustomerEmail: "agus@example.com",
	})
	if err != ErrAlreadyMember {
		t.Errorf("Expected ErrAlreadyMember, got %v", err)
	}
}

func TestInvoiceNumbersAreSequential(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Free Course", Price: 0, IsPublished: true}
	testDB.Create(&course)

	svc := newCheckoutService(testDB)
	first, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId: 14, ItemType: models.TrxTypeCourse, ItemId: course.ID,
		CustomerName: "Eka", CustomerEmail: "eka@example.com",
	})
	if err != nil {
		t.Fatalf("First checkout failed: %v", err)
	}
	second, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId: 15, ItemType: models.TrxTypeCourse, ItemId: course.ID,
		CustomerName: "Fajar", CustomerEmail: "fajar@example.com",
	})
	if err != nil {
		t.Fatalf("Second checkout failed: %v", err)
	}

	if first.InvoiceNumber != "INV1000" || second.InvoiceNumber != "INV1001" {
		t.Errorf("Expected INV1000/INV1001, got %s/%s", first.InvoiceNumber, second.InvoiceNumber)
	}
}

func TestInvoiceCounterSeedContinuesFromIssuedNumbers(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Free Course", Price: 0, IsPublished: true}
	testDB.Create(&course)
	testDB.Create(&models.Transaction{
		UserId: 18, Type: models.TrxTypeCourse, ItemId: course.ID,
		Status: models.TrxStatusSuccess, PaymentMethod: models.PaymentMethodFree,
		InvoiceNumber: "INV1500",
	})

	// Seeding twice must leave exactly one counter row.
	if err := database.SeedInvoiceCounter(testDB); err != nil {
		t.Fatalf("SeedInvoiceCounter failed: %v", err)
	}
	if err := database.SeedInvoiceCounter(testDB); err != nil {
		t.Fatalf("Second SeedInvoiceCounter failed: %v", err)
	}

	var counters []models.InvoiceCounter
	testDB.Find(&counters)
	if len(counters) != 1 {
		t.Fatalf("Expected 1 counter row, got %d", len(counters))
	}
	if counters[0].Value != 1500 {
		t.Errorf("Expected counter seeded to 1500, got %d", counters[0].Value)
	}

	svc := newCheckoutService(testDB)
	result, err := svc.CreateCheckout(CreateCheckoutDTO{
		UserId: 19, ItemType: models.TrxTypeCourse, ItemId: course.ID,
		CustomerName: "Gita", CustomerEmail: "gita@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCheckout failed: %v", err)
	}
	if result.InvoiceNumber != "INV1501" {
		t.Errorf("Expected INV1501, got %s", result.InvoiceNumber)
	}
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	os.Exit(code)
}
