package services

import (
	"testing"

	"affiliate-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func newPayoutService() (*PayoutService, *WalletService) {
	wallets := NewWalletService(testDB)
	return NewPayoutService(testDB, wallets, NewSettingsService(testDB), nil), wallets
}

func fundWallet(t *testing.T, wallets *WalletService, userId uint, amount float64) *models.Wallet {
	t.Helper()
	wallet, err := wallets.EnsureWallet(userId)
	if err != nil {
		t.Fatalf("EnsureWallet failed: %v", err)
	}
	testDB.Model(wallet).Updates(map[string]interface{}{
		"balance":        amount,
		"total_earnings": amount,
	})
	testDB.Create(&models.WalletTransaction{
		WalletId: wallet.ID, Amount: amount,
		Type: models.WalletTrxCommission, Reference: "SEED",
	})
	return wallet
}

func TestPayoutBelowMinimumRejected(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 50, 200000)

	// Default minimum withdrawal is 50000.
	_, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 50, Amount: 40000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	assert.ErrorIs(t, err, ErrBelowMinimum)
}

func TestPayoutRequiresValidPin(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 51, 200000)

	_, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 51, Amount: 100000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	assert.ErrorIs(t, err, ErrPinNotSet)

	if err := svc.SetPin(51, "1234"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	_, err = svc.RequestPayout(RequestPayoutDTO{
		UserId: 51, Amount: 100000, Pin: "9999",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	assert.ErrorIs(t, err, ErrInvalidPin)
}

func TestPayoutBooksAndDebitsWallet(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 52, 200000)
	svc.SetPin(52, "1234")

	payout, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 52, Amount: 100000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test User", AccountNumber: "123456",
	})
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}

	assert.Equal(t, models.PayoutStatusProcessing, payout.Status)
	assert.NotEmpty(t, payout.Reference)

	wallet, _ := wallets.GetWallet(52)
	assert.Equal(t, 100000.0, wallet.Balance)
	assert.Equal(t, 100000.0, wallet.TotalPayout)

	var debit models.WalletTransaction
	if err := testDB.Where("reference = ?", payout.Reference).First(&debit).Error; err != nil {
		t.Fatalf("Expected ledger debit: %v", err)
	}
	assert.Equal(t, -100000.0, debit.Amount)
	assert.Equal(t, models.WalletTrxPayout, debit.Type)

	sum, _ := wallets.LedgerSum(wallet.ID)
	assert.Equal(t, wallet.Balance, sum)
}

func TestPayoutReservedAmountBlocksOverdraw(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	wallet := fundWallet(t, wallets, 53, 100000)
	svc.SetPin(53, "1234")

	// A payout still pending manual review keeps its amount reserved.
	testDB.Create(&models.Payout{
		WalletId: wallet.ID, UserId: 53, Amount: 80000, NetAmount: 80000,
		Status: models.PayoutStatusPending, Reference: "RESERVED-1",
	})

	_, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 53, Amount: 50000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestUpdateStatusCannotReviveTerminalPayout(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 55, 200000)
	svc.SetPin(55, "1234")

	payout, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 55, Amount: 100000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}

	// The worker refunds the payout while an admin review is in flight.
	if err := svc.RefundPayout(payout.ID, "account closed"); err != nil {
		t.Fatalf("RefundPayout failed: %v", err)
	}

	// Approving now would re-enqueue a disbursement for money already
	// returned to the wallet.
	_, err = svc.UpdateStatus(UpdatePayoutStatusDTO{
		PayoutId: payout.ID, Status: models.PayoutStatusApproved, UpdatedBy: "admin",
	})
	assert.ErrorIs(t, err, ErrStateConflict)

	reloaded, _ := svc.GetPayout(payout.ID)
	assert.Equal(t, models.PayoutStatusRejected, reloaded.Status)
	wallet, _ := wallets.GetWallet(55)
	assert.Equal(t, 200000.0, wallet.Balance)

	// A paid payout is just as terminal.
	testDB.Model(&models.Payout{}).Where("id = ?", payout.ID).
		Update("status", models.PayoutStatusPaid)
	_, err = svc.UpdateStatus(UpdatePayoutStatusDTO{
		PayoutId: payout.ID, Status: models.PayoutStatusApproved, UpdatedBy: "admin",
	})
	assert.ErrorIs(t, err, ErrStateConflict)
	err = svc.RefundPayout(payout.ID, "late reject")
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestUpdateStatusRejectRefundsWallet(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 56, 200000)
	svc.SetPin(56, "1234")

	payout, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 56, Amount: 100000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}

	updated, err := svc.UpdateStatus(UpdatePayoutStatusDTO{
		PayoutId: payout.ID, Status: models.PayoutStatusRejected,
		Comment: "bank details mismatch", UpdatedBy: "admin",
	})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	assert.Equal(t, models.PayoutStatusRejected, updated.Status)
	wallet, _ := wallets.GetWallet(56)
	assert.Equal(t, 200000.0, wallet.Balance)
}

func TestRefundPayoutRestoresBalanceOnce(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc, wallets := newPayoutService()
	fundWallet(t, wallets, 54, 200000)
	svc.SetPin(54, "1234")

	payout, err := svc.RequestPayout(RequestPayoutDTO{
		UserId: 54, Amount: 100000, Pin: "1234",
		BankName: "BCA", BankCode: "014", AccountName: "Test", AccountNumber: "123456",
	})
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}

	if err := svc.RefundPayout(payout.ID, "account closed"); err != nil {
		t.Fatalf("RefundPayout failed: %v", err)
	}

	wallet, _ := wallets.GetWallet(54)
	assert.Equal(t, 200000.0, wallet.Balance)
	assert.Equal(t, 0.0, wallet.TotalPayout)

	var reversal models.WalletTransaction
	err = testDB.Where("reference = ? AND type = ?", payout.Reference, models.WalletTrxPayoutReversal).
		First(&reversal).Error
	assert.NoError(t, err)

	// A second refund must not credit again.
	err = svc.RefundPayout(payout.ID, "again")
	assert.ErrorIs(t, err, ErrStateConflict)
	wallet, _ = wallets.GetWallet(54)
	assert.Equal(t, 200000.0, wallet.Balance)
}
