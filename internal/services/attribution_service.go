package services

import (
	"encoding/json"
	"log"
	"strings"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"

	"gorm.io/gorm"
)

// Self-referral policies. "user" blocks attribution when the affiliate is the
// buyer; "name" blocks on display-name equality; "off" disables the guard.
const (
	SelfReferralPolicyUser = "user"
	SelfReferralPolicyName = "name"
	SelfReferralPolicyOff  = "off"
)

type AttributionService struct {
	DB       *gorm.DB
	Settings *SettingsService
}

func NewAttributionService(db *gorm.DB, settings *SettingsService) *AttributionService {
	return &AttributionService{DB: db, Settings: settings}
}

// referralCookie is the JSON payload written by the storefront when a visitor
// lands through an affiliate link.
type referralCookie struct {
	UserId uint `json:"userId"`
}

// Resolve picks a single affiliate for a purchase, or nil. An affiliate bound
// to the coupon wins over the referral cookie. A malformed cookie never blocks
// checkout; attribution just falls back to nil.
func (s *AttributionService) Resolve(couponAffiliateId *uint, rawCookie string, buyerUserId uint, buyerName string) *uint {
	if couponAffiliateId != nil {
		if s.isSelfReferral(*couponAffiliateId, buyerUserId, buyerName) {
			return nil
		}
		return couponAffiliateId
	}

	if rawCookie == "" {
		return nil
	}

	var cookie referralCookie
	if err := json.Unmarshal([]byte(rawCookie), &cookie); err != nil || cookie.UserId == 0 {
		return nil
	}

	var profile models.AffiliateProfile
	if err := s.DB.Where("user_id = ? AND is_active = ?", cookie.UserId, true).First(&profile).Error; err != nil {
		return nil
	}

	if s.isSelfReferral(profile.ID, buyerUserId, buyerName) {
		return nil
	}
	return &profile.ID
}

func (s *AttributionService) isSelfReferral(affiliateId, buyerUserId uint, buyerName string) bool {
	policy := s.Settings.Get(models.SettingSelfReferralPolicy)
	if policy == SelfReferralPolicyOff {
		return false
	}

	var profile models.AffiliateProfile
	if err := s.DB.First(&profile, affiliateId).Error; err != nil {
		return false
	}

	switch policy {
	case SelfReferralPolicyName:
		return buyerName != "" && strings.EqualFold(profile.DisplayName, buyerName)
	default:
		return profile.UserId == buyerUserId
	}
}

// GetProfile loads an affiliate profile by id.
func (s *AttributionService) GetProfile(affiliateId uint) (*models.AffiliateProfile, error) {
	var profile models.AffiliateProfile
	if err := s.DB.First(&profile, affiliateId).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByCode loads an affiliate profile by its public code.
func (s *AttributionService) GetProfileByCode(code string) (*models.AffiliateProfile, error) {
	var profile models.AffiliateProfile
	if err := s.DB.Where("affiliate_code = ?", code).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureProfile lazily creates an affiliate profile with a generated unique
// code on the first qualifying action.
func (s *AttributionService) EnsureProfile(userId uint, displayName string) (*models.AffiliateProfile, error) {
	var profile models.AffiliateProfile
	err := s.DB.Where("user_id = ?", userId).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	defaultRate := s.Settings.Float(models.SettingDefaultCommission)
	profile = models.AffiliateProfile{
		UserId:         userId,
		AffiliateCode:  common.GenerateAffiliateCode(),
		DisplayName:    displayName,
		CommissionRate: defaultRate,
		CommissionType: models.DiscountTypePercentage,
		IsActive:       true,
	}

	// Retry once on a code collision; the code space is large enough that a
	// second collision in a row is not worth handling.
	if err := s.DB.Create(&profile).Error; err != nil {
		profile.AffiliateCode = common.GenerateAffiliateCode()
		if err := s.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

// RecordClick increments the click counter for an affiliate code. Unknown
// codes are ignored so link probes cannot error a landing page.
func (s *AttributionService) RecordClick(code string) {
	res := s.DB.Model(&models.AffiliateProfile{}).
		Where("affiliate_code = ? AND is_active = ?", code, true).
		UpdateColumn("total_clicks", gorm.Expr("total_clicks + ?", 1))
	if res.Error != nil {
		log.Printf("Failed to record click for %s: %v", code, res.Error)
	}
}
