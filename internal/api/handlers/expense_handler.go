package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/internal/api/presenters"
	"github.com/receiptwise/backend/pkg/expense"
)

type (
	ExpenseHandler interface {
		GetWeeklyExpenses(c *fiber.Ctx) error
		GetSummary(c *fiber.Ctx) error
	}

	expenseHandler struct {
		expenseService expense.ExpenseService
	}
)

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &expenseHandler{expenseService: expenseService}
}

func (h *expenseHandler) GetWeeklyExpenses(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	// Any date within the week selects that week; defaults to today.
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedWeeklyExpenses, domain.ErrInvalidReceiptDate)
		}
		date = parsed
	}

	res, err := h.expenseService.Weekly(c.Context(), userID, date)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedWeeklyExpenses, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessWeeklyExpenses)
}

func (h *expenseHandler) GetSummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.expenseService.Summary(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSummary, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSummary)
}
