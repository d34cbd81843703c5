package domain

import (
	"github.com/shopspring/decimal"
)

var (
	MessageSuccessWeeklyExpenses = "weekly expenses retrieved successfully"
	MessageSuccessSummary        = "expense summary retrieved successfully"

	MessageFailedWeeklyExpenses = "failed to retrieve weekly expenses"
	MessageFailedSummary        = "failed to retrieve expense summary"
)

type (
	CategoryExpense struct {
		Category       string          `json:"category"`
		Total          decimal.Decimal `json:"total"`
		Count          int             `json:"count"`
		UncertainCount int             `json:"uncertain_count"`
	}

	WeeklyExpensesResponse struct {
		WeekStart     string            `json:"week_start"`
		TotalAmount   decimal.Decimal   `json:"total_amount"`
		ReceiptsCount int               `json:"receipts_count"`
		Categories    []CategoryExpense `json:"categories"`
		Receipts      []ReceiptResponse `json:"receipts"`
	}

	WeekTotal struct {
		Week  string          `json:"week"`
		Total decimal.Decimal `json:"total"`
	}

	ExpenseSummaryResponse struct {
		WeeklySummary []WeekTotal `json:"weekly_summary"`
	}
)
