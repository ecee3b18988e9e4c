package services

import (
	"strconv"
	"sync"
	"time"

	"affiliate-service/internal/models"

	"gorm.io/gorm"
)

// Built-in defaults used when a settings row is absent.
var settingDefaults = map[string]string{
	models.SettingMinWithdrawal:      "50000",
	models.SettingWithdrawalFee:      "0",
	models.SettingPinRequired:        "true",
	models.SettingPaymentExpiryHours: "24",
	models.SettingDefaultCommission:  "10",
	models.SettingSelfReferralPolicy: "user",
}

type cachedSetting struct {
	value     string
	fetchedAt time.Time
}

// SettingsService reads platform settings from the settings table at request
// time, behind a short TTL cache so hot paths do not hit the table on every
// call.
type SettingsService struct {
	DB  *gorm.DB
	TTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSetting
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		DB:    db,
		TTL:   30 * time.Second,
		cache: make(map[string]cachedSetting),
	}
}

func (s *SettingsService) Get(key string) string {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < s.TTL {
		return entry.value
	}

	value := settingDefaults[key]
	var setting models.Setting
	if err := s.DB.Where("setting_key = ?", key).First(&setting).Error; err == nil {
		value = setting.Value
	}

	s.mu.Lock()
	s.cache[key] = cachedSetting{value: value, fetchedAt: time.Now()}
	s.mu.Unlock()

	return value
}

func (s *SettingsService) Float(key string) float64 {
	v, err := strconv.ParseFloat(s.Get(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *SettingsService) Int(key string) int {
	v, err := strconv.Atoi(s.Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (s *SettingsService) Bool(key string) bool {
	v, err := strconv.ParseBool(s.Get(key))
	if err != nil {
		return false
	}
	return v
}

// Set upserts a setting row and refreshes the cache entry.
func (s *SettingsService) Set(key, value string) error {
	var setting models.Setting
	err := s.DB.Where("setting_key = ?", key).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		err = s.DB.Create(&models.Setting{Key: key, Value: value}).Error
	} else if err == nil {
		err = s.DB.Model(&setting).Update("setting_value", value).Error
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = cachedSetting{value: value, fetchedAt: time.Now()}
	s.mu.Unlock()
	return nil
}
