package domain

import (
	"errors"
)

var (
	MessageSuccessEmailReceipt = "email receipt accepted for processing"

	MessageFailedEmailReceipt = "failed to process email receipt"

	// ErrNotEligible rejects inbound email before any job is created: either
	// no account matches the sender or the account's tier does not include
	// email ingestion.
	ErrNotEligible = errors.New("user not eligible for email receipts")
)

type (
	EmailReceiptWebhookRequest struct {
		Email      string `json:"email" validate:"required,email"`
		RawMessage string `json:"rawMessage" validate:"required"`
	}

	EmailReceiptWebhookResponse struct {
		Status string `json:"status"`
	}
)
