package services

import (
	"affiliate-service/internal/models"

	"gorm.io/gorm"
)

// CatalogItem is the common purchasable view over memberships, products and
// courses.
type CatalogItem struct {
	Type           string
	ID             uint
	Name           string
	Price          float64
	CommissionRate float64
	CommissionType string
	DurationDays   int
	Purchasable    bool
}

type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// GetItem resolves a catalog item by transaction type and id.
func (s *CatalogService) GetItem(itemType string, itemId uint) (*CatalogItem, error) {
	switch itemType {
	case models.TrxTypeMembership, models.TrxTypeSupplierMembership:
		var m models.Membership
		if err := s.DB.First(&m, itemId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &CatalogItem{
			Type:           itemType,
			ID:             m.ID,
			Name:           m.Name,
			Price:          m.Price,
			CommissionRate: m.CommissionRate,
			CommissionType: m.CommissionType,
			DurationDays:   m.DurationDays,
			Purchasable:    m.IsActive,
		}, nil

	case models.TrxTypeProduct:
		var p models.Product
		if err := s.DB.First(&p, itemId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &CatalogItem{
			Type:           itemType,
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.Price,
			CommissionRate: p.CommissionRate,
			CommissionType: p.CommissionType,
			Purchasable:    p.IsActive,
		}, nil

	case models.TrxTypeCourse:
		var c models.Course
		if err := s.DB.First(&c, itemId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &CatalogItem{
			Type:           itemType,
			ID:             c.ID,
			Name:           c.Title,
			Price:          c.Price,
			CommissionRate: c.CommissionRate,
			CommissionType: c.CommissionType,
			Purchasable:    c.IsPublished,
		}, nil
	}

	return nil, ErrItemNotFound
}
