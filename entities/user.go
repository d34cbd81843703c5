package entities

import (
	"github.com/google/uuid"
)

const (
	TierFree = "free"
	TierPro  = "pro"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name     string    `json:"name"`
	Email    string    `gorm:"uniqueIndex" json:"email"`
	Password string    `json:"-"`
	Tier     string    `gorm:"default:free" json:"tier"`

	// Pro users may forward receipt emails to their personal ingest address.
	ReceiptEmailAddress  string `json:"receipt_email_address,omitempty"`
	EmailReceiptsEnabled bool   `gorm:"default:false" json:"email_receipts_enabled"`

	Receipts []*Receipt `gorm:"foreignKey:UserID"`
	Timestamp
}

// CanReceiveEmailReceipts reports whether forwarded emails from this user
// may be ingested. Only pro accounts with the feature switched on qualify.
func (u *User) CanReceiveEmailReceipts() bool {
	return u.Tier == TierPro && u.EmailReceiptsEnabled
}
