package database

import (
	"fmt"
	"log"

	"inventory-app/config"
	"inventory-app/internal/domain/products"
	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
	"inventory-app/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.GormLogger(),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&users.User{},
		&subscriptions.Subscription{},
		&products.Category{},
		&products.Product{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	fmt.Println("Connected and migrated successfully")
}
