package extraction

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/receiptwise/backend/domain"
)

const defaultItemName = "Unknown Item"
const defaultCategory = "Other"

// Result is the structured outcome of one extraction attempt.
type Result struct {
	StoreName   *string
	ReceiptDate *time.Time
	TotalAmount *decimal.Decimal
	Items       []Item
}

type Item struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	IsUncertain bool
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
}

// ParseResponse recovers a Result from free-form model output. The text may
// wrap its JSON in markdown fences or prose; everything between the first
// "{" and the last "}" is the candidate payload.
//
// When skipDate is true any receipt_date in the response is ignored and
// Result.ReceiptDate stays nil, leaving the receipt's stored date untouched.
func ParseResponse(raw string, skipDate bool) (*Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, domain.ErrMalformedExtraction
	}

	var payload struct {
		StoreName   *string           `json:"store_name"`
		ReceiptDate *string           `json:"receipt_date"`
		TotalAmount *decimal.Decimal  `json:"total_amount"`
		Items       []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, domain.ErrMalformedExtraction
	}

	result := &Result{
		StoreName:   payload.StoreName,
		TotalAmount: payload.TotalAmount,
	}

	if !skipDate && payload.ReceiptDate != nil {
		// A date the model got wrong is non-fatal; the receipt keeps
		// whatever date it already had.
		if d, ok := parseDate(*payload.ReceiptDate); ok {
			result.ReceiptDate = &d
		}
	}

	for _, rawItem := range payload.Items {
		item, ok := parseItem(rawItem)
		if !ok {
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// parseItem maps one entry of the items array, defaulting every missing
// field. A malformed item is dropped without touching the rest.
func parseItem(raw json.RawMessage) (Item, bool) {
	var payload struct {
		Name        *string          `json:"name"`
		Price       *decimal.Decimal `json:"price"`
		Category    *string          `json:"category"`
		IsUncertain *bool            `json:"is_uncertain"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Item{}, false
	}

	item := Item{
		Name:     defaultItemName,
		Price:    decimal.Zero,
		Category: defaultCategory,
	}
	if payload.Name != nil && strings.TrimSpace(*payload.Name) != "" {
		item.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Price != nil {
		item.Price = *payload.Price
	}
	if payload.Category != nil && strings.TrimSpace(*payload.Category) != "" {
		item.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.IsUncertain != nil {
		item.IsUncertain = *payload.IsUncertain
	}
	return item, true
}
