package expense

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/pkg/receipt"
)

// summaryWeeks is how many trailing weeks the summary endpoint reports.
const summaryWeeks = 4

type (
	ExpenseService interface {
		Weekly(ctx context.Context, userID string, date time.Time) (domain.WeeklyExpensesResponse, error)
		Summary(ctx context.Context, userID string) (domain.ExpenseSummaryResponse, error)
	}

	expenseService struct {
		receiptRepository receipt.ReceiptRepository
		log               zerolog.Logger
	}
)

func NewExpenseService(receiptRepository receipt.ReceiptRepository, log zerolog.Logger) ExpenseService {
	return &expenseService{
		receiptRepository: receiptRepository,
		log:               log.With().Str("component", "expense_service").Logger(),
	}
}

func (s *expenseService) Weekly(ctx context.Context, userID string, date time.Time) (domain.WeeklyExpensesResponse, error) {
	weekStart := utils.StartOfWeek(date)

	receipts, err := s.receiptRepository.GetCompletedReceiptsByWeek(ctx, userID, weekStart)
	if err != nil {
		return domain.WeeklyExpensesResponse{}, err
	}

	total := decimal.Zero
	byCategory := map[string]*domain.CategoryExpense{}
	responses := make([]domain.ReceiptResponse, 0, len(receipts))

	for _, r := range receipts {
		if r.TotalAmount != nil {
			total = total.Add(*r.TotalAmount)
		}
		for _, item := range r.Items {
			agg, ok := byCategory[item.Category]
			if !ok {
				agg = &domain.CategoryExpense{Category: item.Category, Total: decimal.Zero}
				byCategory[item.Category] = agg
			}
			agg.Total = agg.Total.Add(item.Price)
			agg.Count++
			if item.IsUncertain {
				agg.UncertainCount++
			}
		}
		responses = append(responses, toReceiptResponse(r))
	}

	categories := make([]domain.CategoryExpense, 0, len(byCategory))
	for _, agg := range byCategory {
		categories = append(categories, *agg)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Total.GreaterThan(categories[j].Total)
	})

	return domain.WeeklyExpensesResponse{
		WeekStart:     weekStart.Format("2006-01-02"),
		TotalAmount:   total,
		ReceiptsCount: len(receipts),
		Categories:    categories,
		Receipts:      responses,
	}, nil
}

func (s *expenseService) Summary(ctx context.Context, userID string) (domain.ExpenseSummaryResponse, error) {
	now := time.Now()
	summary := make([]domain.WeekTotal, 0, summaryWeeks)

	for weeksAgo := 0; weeksAgo < summaryWeeks; weeksAgo++ {
		weekStart := utils.StartOfWeek(now.AddDate(0, 0, -7*weeksAgo))
		total, err := s.receiptRepository.SumCompletedTotalByWeek(ctx, userID, weekStart)
		if err != nil {
			return domain.ExpenseSummaryResponse{}, err
		}
		summary = append(summary, domain.WeekTotal{
			Week:  weekStart.Format("2006-01-02"),
			Total: total,
		})
	}

	return domain.ExpenseSummaryResponse{WeeklySummary: summary}, nil
}

func toReceiptResponse(r *entities.Receipt) domain.ReceiptResponse {
	items := make([]domain.ReceiptItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.ReceiptItemResponse{
			ID:          item.ID.String(),
			Name:        item.Name,
			Price:       item.Price,
			Category:    item.Category,
			IsUncertain: item.IsUncertain,
		})
	}

	return domain.ReceiptResponse{
		ID:          r.ID.String(),
		Source:      r.Source,
		Status:      r.Status,
		StoreName:   r.StoreName,
		ReceiptDate: r.ReceiptDate,
		TotalAmount: r.TotalAmount,
		WeekOf:      r.WeekOf,
		Items:       items,
		CreatedAt:   r.CreatedAt,
	}
}
