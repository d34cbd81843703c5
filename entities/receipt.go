package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReceiptStatusPending    = "pending"
	ReceiptStatusProcessing = "processing"
	ReceiptStatusCompleted  = "completed"
	ReceiptStatusFailed     = "failed"
)

const (
	ReceiptSourceUpload = "upload"
	ReceiptSourceEmail  = "email"
)

const (
	StorageDiskPublic = "public"
	StorageDiskS3     = "s3"
)

type Receipt struct {
	ID     uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID *uuid.UUID `gorm:"index" json:"user_id,omitempty"`

	// Anonymous uploads carry a session identifier instead of a user.
	SessionID string `gorm:"index" json:"session_id,omitempty"`

	ImagePath        string `json:"image_path"`
	OriginalFilename string `json:"original_filename,omitempty"`
	FileSize         int64  `json:"file_size,omitempty"`
	StorageDisk      string `gorm:"default:public" json:"storage_disk"`

	Source string `gorm:"default:upload" json:"source"` // "upload" or "email"
	Status string `gorm:"default:pending;index" json:"status"`

	StoreName   *string          `json:"store_name"`
	ReceiptDate *time.Time       `gorm:"type:date" json:"receipt_date"`
	TotalAmount *decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	WeekOf      time.Time        `gorm:"type:date;index" json:"week_of"`

	EmailSubject    string     `gorm:"type:text" json:"email_subject,omitempty"`
	EmailReceivedAt *time.Time `json:"email_received_at,omitempty"`

	User  *User          `gorm:"foreignKey:UserID"`
	Items []*ReceiptItem `gorm:"foreignKey:ReceiptID"`
	Timestamp
}
