package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/internal/api/presenters"
	"github.com/receiptwise/backend/pkg/processing"
)

type (
	WebhookHandler interface {
		HandleEmailReceipt(c *fiber.Ctx) error
	}

	webhookHandler struct {
		emailIngestService processing.EmailIngestService
		queue              processing.Queue
		validator          *validator.Validate
	}
)

func NewWebhookHandler(emailIngestService processing.EmailIngestService, queue processing.Queue, validator *validator.Validate) WebhookHandler {
	return &webhookHandler{
		emailIngestService: emailIngestService,
		queue:              queue,
		validator:          validator,
	}
}

// HandleEmailReceipt accepts a forwarded email from the inbound mail
// provider. Eligibility is settled synchronously; the message itself is
// parsed in the background so the provider gets a fast answer.
func (h *webhookHandler) HandleEmailReceipt(c *fiber.Ctx) error {
	req := new(domain.EmailReceiptWebhookRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	u, err := h.emailIngestService.ResolveEligibleUser(c.Context(), req.Email)
	if err != nil {
		switch err {
		case domain.ErrUserNotFound:
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedEmailReceipt, err)
		case domain.ErrNotEligible:
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedEmailReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedEmailReceipt, err)
	}

	if err := h.queue.EnqueueEmailIngestion(c.Context(), u.ID.String(), req.Email, req.RawMessage); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedEmailReceipt, err)
	}

	return presenters.SuccessResponse(c, domain.EmailReceiptWebhookResponse{Status: "queued"}, fiber.StatusAccepted, domain.MessageSuccessEmailReceipt)
}
