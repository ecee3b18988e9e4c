package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"affiliate-service/internal/consumers"
	"affiliate-service/internal/database"
	"affiliate-service/internal/services"
	"affiliate-service/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	// Connect DB
	database.Connect()
	db := database.DB

	// Init Services
	settingsService := services.NewSettingsService(db)
	walletService := services.NewWalletService(db)
	flutterwaveService := services.NewFlutterwaveService(db)
	payoutService := services.NewPayoutService(db, walletService, settingsService, nil)

	processor := consumers.NewPayoutProcessor(db, payoutService, flutterwaveService, settingsService)

	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	log.Println("Starting worker...")
	worker.StartWorker(asynq.RedisClientOpt{Addr: redisAddr}, processor)
}
