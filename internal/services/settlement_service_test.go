package services

import (
	"encoding/json"
	"testing"
	"time"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"github.com/stretchr/testify/assert"
)

func newSettlementService() *SettlementService {
	wallets := NewWalletService(testDB)
	return NewSettlementService(
		testDB,
		NewProvisioningService(testDB),
		NewCommissionService(testDB, wallets),
		nil,
	)
}

func pendingCourseTransaction(userId, courseId uint, amount float64, affiliateId *uint) models.Transaction {
	meta, _ := json.Marshal(CheckoutMetadata{
		ItemName:         "Course",
		CommissionRate:   30,
		CommissionType:   models.DiscountTypePercentage,
		CommissionAmount: ComputeCommission(amount, 30, models.DiscountTypePercentage),
	})
	return models.Transaction{
		UserId:        userId,
		Type:          models.TrxTypeCourse,
		ItemId:        courseId,
		Amount:        amount,
		Status:        models.TrxStatusPending,
		PaymentMethod: models.PaymentMethodInvoice,
		InvoiceNumber: "TEST-" + common.GenerateTrxNo(),
		AffiliateId:   affiliateId,
		Metadata:      string(meta),
	}
}

func TestSettleProvisionsAndPostsCommission(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Pro Course", Price: 449000, IsPublished: true}
	testDB.Create(&course)
	profile := models.AffiliateProfile{UserId: 30, AffiliateCode: "AFSETTLE", IsActive: true}
	testDB.Create(&profile)

	trx := pendingCourseTransaction(31, course.ID, 449000, &profile.ID)
	testDB.Create(&trx)

	svc := newSettlementService()
	settled, err := svc.Settle(trx.ID, "Bank transfer verified", models.PaymentMethodManual)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	assert.Equal(t, models.TrxStatusSuccess, settled.Status)
	assert.NotNil(t, settled.PaidAt)

	var enrollments int64
	testDB.Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", 31, course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	var conversion models.AffiliateConversion
	if err := testDB.Where("transaction_id = ?", trx.ID).First(&conversion).Error; err != nil {
		t.Fatalf("Expected conversion row: %v", err)
	}
	assert.Equal(t, 134700.0, conversion.CommissionAmount)

	wallet, err := NewWalletService(testDB).GetWallet(30)
	if err != nil {
		t.Fatalf("Affiliate wallet missing: %v", err)
	}
	assert.Equal(t, 134700.0, wallet.Balance)
}

func TestSettleTwiceIsConflict(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Course", Price: 100000, IsPublished: true}
	testDB.Create(&course)
	trx := pendingCourseTransaction(32, course.ID, 100000, nil)
	testDB.Create(&trx)

	svc := newSettlementService()
	if _, err := svc.Settle(trx.ID, "", ""); err != nil {
		t.Fatalf("First settle failed: %v", err)
	}

	_, err := svc.Settle(trx.ID, "", "")
	assert.ErrorIs(t, err, ErrStateConflict)

	// Commission and enrollment side effects must not have doubled.
	var enrollments int64
	testDB.Model(&models.CourseEnrollment{}).Where("user_id = ?", 32).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)
}

func TestRejectOnlyTouchesPending(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Course", Price: 100000, IsPublished: true}
	testDB.Create(&course)
	trx := pendingCourseTransaction(33, course.ID, 100000, nil)
	testDB.Create(&trx)

	svc := newSettlementService()
	if err := svc.Reject(trx.ID, "Payment not received"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	var reloaded models.Transaction
	testDB.First(&reloaded, trx.ID)
	assert.Equal(t, models.TrxStatusFailed, reloaded.Status)

	// A failed transaction is terminal.
	err := svc.Reject(trx.ID, "again")
	assert.ErrorIs(t, err, ErrStateConflict)
	_, err = svc.Settle(trx.ID, "", "")
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestExpirePendingSweep(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Course", Price: 100000, IsPublished: true}
	testDB.Create(&course)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := pendingCourseTransaction(34, course.ID, 100000, nil)
	expired.ExpiresAt = &past
	testDB.Create(&expired)

	alive := pendingCourseTransaction(35, course.ID, 100000, nil)
	alive.ExpiresAt = &future
	testDB.Create(&alive)

	svc := newSettlementService()
	if err := svc.ExpirePending(); err != nil {
		t.Fatalf("ExpirePending failed: %v", err)
	}

	var first, second models.Transaction
	testDB.First(&first, expired.ID)
	testDB.First(&second, alive.ID)
	assert.Equal(t, models.TrxStatusFailed, first.Status)
	assert.Equal(t, models.TrxStatusPending, second.Status)
}
