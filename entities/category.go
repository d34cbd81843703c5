package entities

import (
	"github.com/google/uuid"
)

type Category struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name  string    `gorm:"uniqueIndex" json:"name"`
	Color string    `json:"color"`
	Timestamp
}

// CategoryNames is the closed set the extraction prompt offers the model.
// Anything the model cannot place lands in "Other".
var CategoryNames = []string{
	"Food & Groceries",
	"Household",
	"Personal Care",
	"Beverages",
	"Snacks",
	"Meat & Deli",
	"Dairy",
	"Vegetables",
	"Fruits",
	"Other",
}
