package services

import (
	"fmt"
	"log"
	"time"

	"affiliate-service/internal/models"

	"gorm.io/gorm"
)

type ProvisioningService struct {
	DB *gorm.DB
}

func NewProvisioningService(db *gorm.DB) *ProvisioningService {
	return &ProvisioningService{DB: db}
}

// Provision grants the entitlement a settled transaction paid for. It is
// idempotent: re-running it for the same transaction type/item never creates
// duplicate rows.
func (s *ProvisioningService) Provision(userId uint, trx *models.Transaction) error {
	switch trx.Type {
	case models.TrxTypeMembership, models.TrxTypeSupplierMembership:
		return s.provisionMembership(userId, trx.ItemId)
	case models.TrxTypeCourse:
		return s.EnsureEnrollment(userId, trx.ItemId, "purchase")
	case models.TrxTypeProduct:
		return s.EnsureOwnership(userId, trx.ItemId, "purchase")
	}
	return fmt.Errorf("unknown transaction type %q", trx.Type)
}

// provisionMembership creates or renews a membership. An existing row is
// extended by the plan duration from its current end date, keeping the
// single row per (user, membership). Cascading grants run only on first
// creation.
func (s *ProvisioningService) provisionMembership(userId, membershipId uint) error {
	var membership models.Membership
	if err := s.DB.First(&membership, membershipId).Error; err != nil {
		return err
	}
	duration := time.Duration(membership.DurationDays) * 24 * time.Hour

	var existing models.UserMembership
	err := s.DB.Where("user_id = ? AND membership_id = ?", userId, membershipId).First(&existing).Error
	if err == nil {
		// Renewal: extend from the current end date, not from now.
		newEnd := existing.EndDate.Add(duration)
		return s.DB.Model(&existing).Updates(map[string]interface{}{
			"end_date":  newEnd,
			"status":    models.MembershipStatusActive,
			"is_active": true,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	now := time.Now()
	created := models.UserMembership{
		UserId:       userId,
		MembershipId: membershipId,
		Status:       models.MembershipStatusActive,
		StartDate:    now,
		EndDate:      now.Add(duration),
		IsActive:     true,
	}
	if err := s.DB.Create(&created).Error; err != nil {
		return err
	}

	s.cascadeGrants(userId, membershipId)
	return nil
}

// cascadeGrants applies every entitlement bound to the membership. Each grant
// is independent and best-effort: a duplicate or failure on one must not
// abort the others.
func (s *ProvisioningService) cascadeGrants(userId, membershipId uint) {
	var entitlements []models.MembershipEntitlement
	if err := s.DB.Where("membership_id = ?", membershipId).Find(&entitlements).Error; err != nil {
		log.Printf("Failed to load entitlements for membership %d: %v", membershipId, err)
		return
	}

	for _, ent := range entitlements {
		var err error
		switch ent.GrantType {
		case models.GrantTypeGroup:
			err = s.EnsureGroupMember(userId, ent.RefId)
		case models.GrantTypeCourse:
			err = s.EnsureEnrollment(userId, ent.RefId, "membership")
		case models.GrantTypeProduct:
			err = s.EnsureOwnership(userId, ent.RefId, "membership")
		}
		if err != nil {
			log.Printf("Grant %s/%d for user %d failed: %v", ent.GrantType, ent.RefId, userId, err)
		}
	}
}

func (s *ProvisioningService) EnsureEnrollment(userId, courseId uint, source string) error {
	var enrollment models.CourseEnrollment
	return s.DB.Where(models.CourseEnrollment{UserId: userId, CourseId: courseId}).
		Attrs(models.CourseEnrollment{Source: source}).
		FirstOrCreate(&enrollment).Error
}

func (s *ProvisioningService) EnsureOwnership(userId, productId uint, source string) error {
	var owned models.UserProduct
	return s.DB.Where(models.UserProduct{UserId: userId, ProductId: productId}).
		Attrs(models.UserProduct{Source: source}).
		FirstOrCreate(&owned).Error
}

func (s *ProvisioningService) EnsureGroupMember(userId, groupId uint) error {
	var member models.GroupMember
	return s.DB.Where(models.GroupMember{UserId: userId, GroupId: groupId}).
		FirstOrCreate(&member).Error
}
