package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReceiptItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ReceiptID uuid.UUID `gorm:"index" json:"receipt_id"`

	Name        string          `json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2)" json:"price"`
	Category    string          `gorm:"index" json:"category"`
	IsUncertain bool            `gorm:"default:false" json:"is_uncertain"`

	Receipt *Receipt `gorm:"foreignKey:ReceiptID"`
	Timestamp
}
