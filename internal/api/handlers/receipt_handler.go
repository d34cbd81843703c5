package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/internal/api/presenters"
	"github.com/receiptwise/backend/pkg/receipt"
)

type (
	ReceiptHandler interface {
		UploadReceipt(c *fiber.Ctx) error
		GetReceipts(c *fiber.Ctx) error
		GetReceiptByID(c *fiber.Ctx) error
		DeleteReceipt(c *fiber.Ctx) error
		PresignUpload(c *fiber.Ctx) error
		ConfirmUpload(c *fiber.Ctx) error
		UpdateItem(c *fiber.Ctx) error
		GetCategories(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

// currentUserID reads the authenticated user from locals. Handler endpoints
// that also serve anonymous traffic see an empty string.
func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func (h *receiptHandler) UploadReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	image, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadReceipt, domain.ErrFileNotUploaded)
	}

	req := domain.UploadReceiptRequest{Image: image}
	res, err := h.receiptService.UploadReceipt(c.Context(), req, userID)
	if err != nil {
		if err == domain.ErrInvalidImageFormat {
			return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageFailedUploadReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUploadReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusAccepted, domain.MessageSuccessUploadReceipt)
}

func (h *receiptHandler) GetReceipts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	receipts, total, err := h.receiptService.GetReceipts(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"receipts": receipts,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetReceiptByID(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	res, err := h.receiptService.GetReceiptByID(c.Context(), receiptID, userID)
	if err != nil {
		switch err {
		case domain.ErrReceiptNotFound:
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetReceipt, err)
		case domain.ErrUnauthorizedAccess:
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedGetReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipt)
}

func (h *receiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	if err := h.receiptService.DeleteReceipt(c.Context(), receiptID, userID); err != nil {
		switch err {
		case domain.ErrReceiptNotFound:
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedDeleteReceipt, err)
		case domain.ErrUnauthorizedAccess:
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedDeleteReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteReceipt, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteReceipt)
}

func (h *receiptHandler) PresignUpload(c *fiber.Ctx) error {
	req := new(domain.PresignUploadRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.PresignUpload(c.Context(), *req, currentUserID(c))
	if err != nil {
		if err == domain.ErrInvalidImageFormat {
			return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageFailedPresignUpload, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedPresignUpload, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPresignUpload)
}

func (h *receiptHandler) ConfirmUpload(c *fiber.Ctx) error {
	req := new(domain.ConfirmUploadRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.ConfirmUpload(c.Context(), *req, currentUserID(c))
	if err != nil {
		switch err {
		case domain.ErrUploadLimitReached:
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedConfirmUpload, err)
		case domain.ErrFileNotUploaded:
			return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageFailedConfirmUpload, err)
		case domain.ErrInvalidReceiptDate:
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmUpload, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedConfirmUpload, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusAccepted, domain.MessageSuccessConfirmUpload)
}

func (h *receiptHandler) UpdateItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	itemID := c.Params("itemId")

	req := new(domain.UpdateReceiptItemRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.UpdateItem(c.Context(), itemID, *req, userID)
	if err != nil {
		switch err {
		case domain.ErrReceiptItemNotFound:
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUpdateItem, err)
		case domain.ErrUnauthorizedAccess:
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedUpdateItem, err)
		case domain.ErrInvalidPrice:
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateItem, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateItem)
}

func (h *receiptHandler) GetCategories(c *fiber.Ctx) error {
	res, err := h.receiptService.GetCategories(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetCategories, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCategories)
}
