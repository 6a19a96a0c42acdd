// This file runs database migrations.
// How to run:
// go run cmd/migrate/main.go
package main

import (
	"log"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/tripmesh/concierge/config"
	"github.com/tripmesh/concierge/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	dbPort, _ := strconv.Atoi(config.GetEnv("DB_PORT", "5432"))
	database, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", ""),
		User:     config.GetEnv("DB_USER", ""),
		Password: config.GetEnv("DB_PASSWORD", ""),
		DBName:   config.GetEnv("DB_NAME", ""),
		Port:     dbPort,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")
}
