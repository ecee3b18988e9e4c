package main

import (
	"log"

	"affiliate-service/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	database.Connect()

	log.Println("Running database migrations...")
	database.Migrate()
	log.Println("Migrations completed")
}
