package main

import (
	"log"
	"os"

	"affiliate-service/internal/database"
	"affiliate-service/internal/handlers"
	"affiliate-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	settingsService := services.NewSettingsService(db)
	catalogService := services.NewCatalogService(db)
	couponService := services.NewCouponService(db)
	attributionService := services.NewAttributionService(db, settingsService)
	provisioningService := services.NewProvisioningService(db)
	walletService := services.NewWalletService(db)
	commissionService := services.NewCommissionService(db, walletService)
	xenditService := services.NewXenditService(db)
	reportingService := services.NewReportingService(db)

	checkoutService := services.NewCheckoutService(
		db,
		catalogService,
		couponService,
		attributionService,
		provisioningService,
		settingsService,
		xenditService,
	)
	settlementService := services.NewSettlementService(db, provisioningService, commissionService, asynqClient)
	payoutService := services.NewPayoutService(db, walletService, settingsService, asynqClient)

	// Init Handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, couponService)
	settlementHandler := handlers.NewSettlementHandler(settlementService, xenditService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	walletHandler := handlers.NewWalletHandler(walletService)
	affiliateHandler := handlers.NewAffiliateHandler(attributionService, reportingService)
	couponHandler := handlers.NewCouponHandler(couponService)
	transactionHandler := handlers.NewTransactionHandler(reportingService)

	// Initialize Gin
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to the affiliate commission service",
		})
	})

	// Checkout
	r.POST("/checkout", checkoutHandler.CreateCheckout)
	r.GET("/coupons/:code/validate", checkoutHandler.ValidateCoupon)

	// Payments
	r.POST("/webhooks/payment", settlementHandler.HandlePaymentWebhook)

	// Wallets and payouts
	r.GET("/wallets/:userId", walletHandler.GetWallet)
	r.GET("/wallets/:userId/transactions", walletHandler.GetLedger)
	r.POST("/payouts", payoutHandler.RequestPayout)
	r.GET("/payouts", payoutHandler.ListPayouts)
	r.POST("/payouts/pin", payoutHandler.SetPin)

	// Affiliates
	r.POST("/affiliates", affiliateHandler.EnsureProfile)
	r.GET("/affiliates/:code/click", affiliateHandler.RecordClick)
	r.GET("/affiliates/:code/summary", affiliateHandler.GetSummary)
	r.GET("/affiliates/:code/conversions", affiliateHandler.ListConversions)

	// Admin
	admin := r.Group("/admin")
	{
		admin.GET("/transactions", transactionHandler.ListTransactions)
		admin.GET("/transactions/:id", transactionHandler.GetTransaction)
		admin.POST("/transactions/:id/approve", settlementHandler.ApproveTransaction)
		admin.POST("/transactions/:id/reject", settlementHandler.RejectTransaction)
		admin.POST("/coupons", couponHandler.CreateCoupon)
		admin.GET("/coupons", couponHandler.ListCoupons)
		admin.DELETE("/coupons/:id", couponHandler.DeactivateCoupon)
		admin.PUT("/payouts/:id/status", payoutHandler.UpdatePayoutStatus)
	}

	// Start Cron Schedulers
	settlementService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
