package services

import (
	"testing"
	"time"

	"affiliate-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMembershipRenewalExtendsEndDate(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	membership := models.Membership{Name: "Gold", Price: 100000, DurationDays: 30, IsActive: true}
	testDB.Create(&membership)

	svc := NewProvisioningService(testDB)
	trx := &models.Transaction{Type: models.TrxTypeMembership, ItemId: membership.ID}

	if err := svc.Provision(40, trx); err != nil {
		t.Fatalf("First provision failed: %v", err)
	}

	var first models.UserMembership
	testDB.Where("user_id = ? AND membership_id = ?", 40, membership.ID).First(&first)

	// Renewal: the same row is extended, never duplicated.
	if err := svc.Provision(40, trx); err != nil {
		t.Fatalf("Renewal provision failed: %v", err)
	}

	var rows int64
	testDB.Model(&models.UserMembership{}).
		Where("user_id = ? AND membership_id = ?", 40, membership.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)

	var renewed models.UserMembership
	testDB.Where("user_id = ? AND membership_id = ?", 40, membership.ID).First(&renewed)

	extension := renewed.EndDate.Sub(first.EndDate)
	expected := 30 * 24 * time.Hour
	if extension < expected-time.Minute || extension > expected+time.Minute {
		t.Errorf("Expected end date extended by ~30 days, got %v", extension)
	}
}

func TestMembershipCascadeGrants(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	course := models.Course{Title: "Bundled Course", Price: 50000, IsPublished: true}
	product := models.Product{Name: "Bundled Product", Price: 20000, IsActive: true}
	testDB.Create(&course)
	testDB.Create(&product)

	membership := models.Membership{Name: "Bundle", Price: 150000, DurationDays: 30, IsActive: true}
	testDB.Create(&membership)
	testDB.Create(&models.MembershipEntitlement{MembershipId: membership.ID, GrantType: models.GrantTypeCourse, RefId: course.ID})
	testDB.Create(&models.MembershipEntitlement{MembershipId: membership.ID, GrantType: models.GrantTypeProduct, RefId: product.ID})
	testDB.Create(&models.MembershipEntitlement{MembershipId: membership.ID, GrantType: models.GrantTypeGroup, RefId: 7})

	svc := NewProvisioningService(testDB)
	trx := &models.Transaction{Type: models.TrxTypeMembership, ItemId: membership.ID}
	if err := svc.Provision(41, trx); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	var enrollments, owned, members int64
	testDB.Model(&models.CourseEnrollment{}).Where("user_id = ?", 41).Count(&enrollments)
	testDB.Model(&models.UserProduct{}).Where("user_id = ?", 41).Count(&owned)
	testDB.Model(&models.GroupMember{}).Where("user_id = ? AND group_id = ?", 41, 7).Count(&members)
	assert.Equal(t, int64(1), enrollments)
	assert.Equal(t, int64(1), owned)
	assert.Equal(t, int64(1), members)

	// Grants tolerate pre-existing rows.
	if err := svc.EnsureEnrollment(41, course.ID, "membership"); err != nil {
		t.Fatalf("EnsureEnrollment on existing row failed: %v", err)
	}
	testDB.Model(&models.CourseEnrollment{}).Where("user_id = ?", 41).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)
}

func TestProvisionUnknownTypeErrors(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewProvisioningService(testDB)
	err := svc.Provision(42, &models.Transaction{Type: "MYSTERY", ItemId: 1})
	assert.Error(t, err)
}
