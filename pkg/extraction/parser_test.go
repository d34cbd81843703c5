package extraction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptwise/backend/domain"
)

func TestParseResponse(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		raw := `{"store_name":"REWE","receipt_date":"2024-05-03","total_amount":23.47,"items":[{"name":"Milk","price":1.29,"category":"Dairy","is_uncertain":false}]}`

		result, err := ParseResponse(raw, false)
		require.NoError(t, err)

		require.NotNil(t, result.StoreName)
		assert.Equal(t, "REWE", *result.StoreName)
		require.NotNil(t, result.ReceiptDate)
		assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), *result.ReceiptDate)
		require.NotNil(t, result.TotalAmount)
		assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("23.47")))
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Milk", result.Items[0].Name)
		assert.Equal(t, "Dairy", result.Items[0].Category)
	})

	t.Run("JSON wrapped in markdown fences", func(t *testing.T) {
		raw := "Here is the extraction:\n```json\n{\"store_name\":\"ALDI\",\"items\":[]}\n```\nLet me know if you need anything else."

		result, err := ParseResponse(raw, false)
		require.NoError(t, err)
		require.NotNil(t, result.StoreName)
		assert.Equal(t, "ALDI", *result.StoreName)
	})

	t.Run("no JSON object at all", func(t *testing.T) {
		_, err := ParseResponse("I could not read this receipt, sorry.", false)
		assert.ErrorIs(t, err, domain.ErrMalformedExtraction)
	})

	t.Run("broken JSON between braces", func(t *testing.T) {
		_, err := ParseResponse(`{"store_name": "EDEKA", "items": [`+"\n}", false)
		assert.ErrorIs(t, err, domain.ErrMalformedExtraction)
	})

	t.Run("missing item fields get defaults", func(t *testing.T) {
		raw := `{"items":[{},{"name":"  ","price":null},{"name":"Bread"}]}`

		result, err := ParseResponse(raw, false)
		require.NoError(t, err)
		require.Len(t, result.Items, 3)

		assert.Equal(t, "Unknown Item", result.Items[0].Name)
		assert.True(t, result.Items[0].Price.IsZero())
		assert.Equal(t, "Other", result.Items[0].Category)
		assert.False(t, result.Items[0].IsUncertain)

		assert.Equal(t, "Unknown Item", result.Items[1].Name)
		assert.Equal(t, "Bread", result.Items[2].Name)
	})

	t.Run("malformed item dropped, rest kept", func(t *testing.T) {
		raw := `{"items":[{"name":"Eggs"},"not an object",{"name":"Butter"}]}`

		result, err := ParseResponse(raw, false)
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		assert.Equal(t, "Eggs", result.Items[0].Name)
		assert.Equal(t, "Butter", result.Items[1].Name)
	})

	t.Run("alternative date formats", func(t *testing.T) {
		for _, tc := range []struct {
			raw  string
			want time.Time
		}{
			{`{"receipt_date":"2024/05/03"}`, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
			{`{"receipt_date":"03.05.2024"}`, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
			{`{"receipt_date":"05/03/2024"}`, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
		} {
			result, err := ParseResponse(tc.raw, false)
			require.NoError(t, err)
			require.NotNil(t, result.ReceiptDate, tc.raw)
			assert.Equal(t, tc.want, *result.ReceiptDate, tc.raw)
		}
	})

	t.Run("unparseable date is non-fatal", func(t *testing.T) {
		result, err := ParseResponse(`{"store_name":"LIDL","receipt_date":"sometime in May"}`, false)
		require.NoError(t, err)
		assert.Nil(t, result.ReceiptDate)
		require.NotNil(t, result.StoreName)
	})

	t.Run("skipDate ignores a present date", func(t *testing.T) {
		result, err := ParseResponse(`{"receipt_date":"2024-05-03","items":[]}`, true)
		require.NoError(t, err)
		assert.Nil(t, result.ReceiptDate)
	})
}
