package domain

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessUploadReceipt  = "receipt uploaded successfully and is being processed"
	MessageSuccessGetReceipts    = "receipts retrieved successfully"
	MessageSuccessGetReceipt     = "receipt retrieved successfully"
	MessageSuccessDeleteReceipt  = "receipt deleted successfully"
	MessageSuccessPresignUpload  = "upload URL generated successfully"
	MessageSuccessConfirmUpload  = "receipts confirmed and queued for processing"
	MessageSuccessUpdateItem     = "receipt item updated successfully"
	MessageSuccessGetCategories  = "categories retrieved successfully"

	MessageFailedUploadReceipt  = "failed to upload receipt"
	MessageFailedGetReceipts    = "failed to retrieve receipts"
	MessageFailedGetReceipt     = "failed to retrieve receipt"
	MessageFailedDeleteReceipt  = "failed to delete receipt"
	MessageFailedPresignUpload  = "failed to generate upload URL"
	MessageFailedConfirmUpload  = "failed to confirm uploaded receipts"
	MessageFailedUpdateItem     = "failed to update receipt item"
	MessageFailedGetCategories  = "failed to retrieve categories"

	ErrReceiptNotFound       = errors.New("receipt not found")
	ErrReceiptItemNotFound   = errors.New("receipt item not found")
	ErrInvalidImageFormat    = errors.New("invalid image format")
	ErrFileNotUploaded       = errors.New("uploaded file not found in storage")
	ErrUploadLimitReached    = errors.New("anonymous upload limit reached")
	ErrUnauthorizedAccess    = errors.New("unauthorized access to receipt")
	ErrInvalidReceiptDate    = errors.New("invalid receipt date")
	ErrInvalidPrice          = errors.New("price must be a non-negative decimal")
)

// AnonymousUploadLimit caps how many receipts a single anonymous session may create.
const AnonymousUploadLimit = 3

type (
	UploadReceiptRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	UploadReceiptResponse struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}

	PresignUploadRequest struct {
		Filename    string `json:"filename" validate:"required"`
		ContentType string `json:"content_type" validate:"required,startswith=image/"`
		FileSize    int64  `json:"file_size" validate:"required,max=20971520"`
		SessionID   string `json:"session_id" validate:"omitempty,max=100"`
	}

	PresignUploadResponse struct {
		PresignedURL string `json:"presigned_url"`
		FileKey      string `json:"file_key"`
		ExpiresIn    int    `json:"expires_in"`
	}

	ConfirmUploadFile struct {
		FileKey      string `json:"file_key" validate:"required"`
		OriginalName string `json:"original_name" validate:"required"`
		FileSize     int64  `json:"file_size" validate:"required"`
	}

	ConfirmUploadRequest struct {
		Files     []ConfirmUploadFile `json:"files" validate:"required,min=1,max=10,dive"`
		SessionID string              `json:"session_id" validate:"omitempty,max=100"`

		// Optional user-supplied date for bulk uploads. When set, date
		// extraction is skipped and all confirmed receipts use this date.
		ReceiptDate string `json:"receipt_date" validate:"omitempty,datetime=2006-01-02"`
	}

	ConfirmedReceipt struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		OriginalFilename string `json:"original_filename"`
	}

	ConfirmUploadResponse struct {
		Receipts         []ConfirmedReceipt `json:"receipts"`
		TotalUploaded    int                `json:"total_uploaded"`
		RemainingUploads *int               `json:"remaining_uploads,omitempty"`
	}

	ReceiptItemResponse struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Price       decimal.Decimal `json:"price"`
		Category    string          `json:"category"`
		IsUncertain bool            `json:"is_uncertain"`
	}

	ReceiptResponse struct {
		ID              string                `json:"id"`
		Source          string                `json:"source"`
		Status          string                `json:"status"`
		StoreName       *string               `json:"store_name"`
		ReceiptDate     *time.Time            `json:"receipt_date"`
		TotalAmount     *decimal.Decimal      `json:"total_amount"`
		WeekOf          time.Time             `json:"week_of"`
		EmailSubject    string                `json:"email_subject,omitempty"`
		EmailReceivedAt *time.Time            `json:"email_received_at,omitempty"`
		Items           []ReceiptItemResponse `json:"items"`
		CreatedAt       time.Time             `json:"created_at"`
	}

	UpdateReceiptItemRequest struct {
		Name        string `json:"name" validate:"omitempty"`
		Price       string `json:"price" validate:"omitempty"`
		Category    string `json:"category" validate:"omitempty"`
		IsUncertain *bool  `json:"is_uncertain" validate:"omitempty"`
	}

	CategoryResponse struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)
