package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/receiptwise/backend/entities"
)

var categoryColors = map[string]string{
	"Food & Groceries": "#4CAF50",
	"Household":        "#2196F3",
	"Personal Care":    "#9C27B0",
	"Beverages":        "#00BCD4",
	"Snacks":           "#FF9800",
	"Meat & Deli":      "#F44336",
	"Dairy":            "#FFEB3B",
	"Vegetables":       "#8BC34A",
	"Fruits":           "#E91E63",
	"Other":            "#9E9E9E",
}

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Receipt{}); err != nil {
		log.Fatalf("Error migrating receipt database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ReceiptItem{}); err != nil {
		log.Fatalf("Error migrating receipt item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Category{}); err != nil {
		log.Fatalf("Error migrating category database: %v", err)
		return err
	}

	if err := seedCategories(db); err != nil {
		log.Fatalf("Error seeding categories: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}

func seedCategories(db *gorm.DB) error {
	for _, name := range entities.CategoryNames {
		category := entities.Category{Name: name, Color: categoryColors[name]}
		if err := db.Where(entities.Category{Name: name}).
			FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
