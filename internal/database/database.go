package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"affiliate-service/internal/models"
	"affiliate-service/pkg/common"
)

var DB *gorm.DB

func Connect() {
	var err error
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")
}

func Migrate() {
	err := DB.AutoMigrate(
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
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	if err := SeedInvoiceCounter(DB); err != nil {
		log.Fatal("Failed to seed invoice counter: ", err)
	}
	log.Println("Database migration completed")
}

// SeedInvoiceCounter creates the single row behind invoice number allocation
// if it is missing, seeded from the highest number already issued. Checkout
// locks this row FOR UPDATE, so it must exist before the first request; the
// fixed primary key makes a concurrent bootstrap fail on the key instead of
// creating a second counter.
func SeedInvoiceCounter(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.InvoiceCounter{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var invoices []string
	db.Model(&models.Transaction{}).
		Where("invoice_number LIKE ?", common.InvoicePrefix+"%").
		Pluck("invoice_number", &invoices)

	var max int64
	for _, inv := range invoices {
		if seq := common.ParseInvoiceNumber(inv); seq > max {
			max = seq
		}
	}
	return db.Create(&models.InvoiceCounter{ID: 1, Value: max}).Error
}
