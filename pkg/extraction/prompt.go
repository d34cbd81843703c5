package extraction

import (
	"strings"

	"github.com/receiptwise/backend/entities"
)

// PromptVariant selects which extraction instructions are sent with the
// image. Bulk uploads with a user-supplied date use the variant that leaves
// the date alone.
type PromptVariant int

const (
	PromptWithDate PromptVariant = iota
	PromptWithoutDate
)

const promptWithDateTemplate = `Analyze this receipt image and extract the following information in JSON format:

{
    "store_name": "Store name from receipt",
    "receipt_date": "YYYY-MM-DD format",
    "total_amount": 0.00,
    "items": [
        {
            "name": "Item name",
            "price": 0.00,
            "category": "%CATEGORIES%",
            "is_uncertain": false
        }
    ]
}

Rules:
1. Extract ALL items with their individual prices
2. Categorize each item into one of the predefined categories
3. Set 'is_uncertain' to true if you're not confident about the category
4. Use decimal format for prices (e.g., 3.79, not 379)
5. If you can't read an item name clearly, still include it but mark as uncertain
6. Skip any deposit (PFAND) entries - these are not actual purchases
7. Return ONLY the JSON, no additional text

Be very careful with price extraction and make sure the total matches the sum of individual items.`

const promptWithoutDateTemplate = `Analyze this receipt image and extract the following information in JSON format:

{
    "store_name": "Store name from receipt",
    "total_amount": 0.00,
    "items": [
        {
            "name": "Item name",
            "price": 0.00,
            "category": "%CATEGORIES%",
            "is_uncertain": false
        }
    ]
}

Rules:
1. Extract ALL items with their individual prices
2. Categorize each item into one of the predefined categories
3. Set 'is_uncertain' to true if you're not confident about the category
4. Use decimal format for prices (e.g., 3.79, not 379)
5. If you can't read an item name clearly, still include it but mark as uncertain
6. Skip any deposit (PFAND) entries - these are not actual purchases
7. Do NOT include a receipt date field
8. Return ONLY the JSON, no additional text

Be very careful with price extraction and make sure the total matches the sum of individual items.`

// Text renders the full instruction prompt for this variant.
func (v PromptVariant) Text() string {
	categories := strings.Join(entities.CategoryNames, "|")
	if v == PromptWithoutDate {
		return strings.ReplaceAll(promptWithoutDateTemplate, "%CATEGORIES%", categories)
	}
	return strings.ReplaceAll(promptWithDateTemplate, "%CATEGORIES%", categories)
}
