package processing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/pkg/extraction"
)

type stubRepo struct {
	receipt       *entities.Receipt
	replacedItems []*entities.ReceiptItem
	statusHistory []string
}

func (s *stubRepo) CreateReceipt(_ context.Context, r *entities.Receipt) error { return nil }
func (s *stubRepo) GetReceiptByID(_ context.Context, id string) (*entities.Receipt, error) {
	if s.receipt == nil || s.receipt.ID.String() != id {
		return nil, errors.New("record not found")
	}
	return s.receipt, nil
}
func (s *stubRepo) GetReceipts(_ context.Context, _ string, _, _ int) ([]*entities.Receipt, int64, error) {
	return nil, 0, nil
}
func (s *stubRepo) UpdateReceipt(_ context.Context, r *entities.Receipt) error {
	s.statusHistory = append(s.statusHistory, r.Status)
	return nil
}
func (s *stubRepo) DeleteReceipt(_ context.Context, _ string) error { return nil }
func (s *stubRepo) CountReceiptsBySession(_ context.Context, _ string) (int64, error) {
	return 0, nil
}
func (s *stubRepo) ReplaceItems(_ context.Context, _ uuid.UUID, items []*entities.ReceiptItem) error {
	s.replacedItems = items
	return nil
}
func (s *stubRepo) GetItemByID(_ context.Context, _ string) (*entities.ReceiptItem, error) {
	return nil, nil
}
func (s *stubRepo) UpdateItem(_ context.Context, _ *entities.ReceiptItem) error { return nil }
func (s *stubRepo) GetCompletedReceiptsByWeek(_ context.Context, _ string, _ time.Time) ([]*entities.Receipt, error) {
	return nil, nil
}
func (s *stubRepo) SumCompletedTotalByWeek(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (s *stubRepo) GetCategories(_ context.Context) ([]*entities.Category, error) { return nil, nil }

type stubStorage struct {
	data map[string][]byte
	err  error

	putKeys         []string
	putContentTypes []string
}

func (s *stubStorage) Get(_ context.Context, disk, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data[disk+"/"+key], nil
}
func (s *stubStorage) Put(_ context.Context, _, key string, _ []byte, contentType string) error {
	s.putKeys = append(s.putKeys, key)
	s.putContentTypes = append(s.putContentTypes, contentType)
	return nil
}
func (s *stubStorage) Exists(_ context.Context, _, _ string) (bool, error)          { return true, nil }
func (s *stubStorage) Delete(_ context.Context, _, _ string) error                  { return nil }
func (s *stubStorage) PresignPut(_ context.Context, _, _, _ string) (string, error) {
	return "", nil
}

type stubClient struct {
	configured bool
	response   string
	err        error

	gotVariant extraction.PromptVariant
}

func (c *stubClient) Configured() bool { return c.configured }
func (c *stubClient) ExtractReceipt(_ context.Context, _ []byte, variant extraction.PromptVariant) (string, error) {
	c.gotVariant = variant
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func pendingReceipt() *entities.Receipt {
	existing := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return &entities.Receipt{
		ID:          uuid.New(),
		ImagePath:   "receipts/test/img.jpg",
		StorageDisk: entities.StorageDiskPublic,
		Status:      entities.ReceiptStatusPending,
		WeekOf:      existing,
	}
}

func TestProcessReceipt(t *testing.T) {
	ctx := context.Background()

	newService := func(repo *stubRepo, store *stubStorage, client *stubClient) ProcessorService {
		return NewProcessorService(repo, store, extraction.NewOptimizer(zerolog.Nop()), client, zerolog.Nop())
	}

	t.Run("successful extraction completes the receipt", func(t *testing.T) {
		rec := pendingReceipt()
		repo := &stubRepo{receipt: rec}
		store := &stubStorage{data: map[string][]byte{
			"public/" + rec.ImagePath: []byte("jpeg bytes"),
		}}
		client := &stubClient{
			configured: true,
			response: `{"store_name":"REWE","receipt_date":"2024-05-01","total_amount":12.50,
				"items":[{"name":"Milk","price":1.29,"category":"Dairy"},{"name":"Bread","price":2.10,"category":"Food & Groceries"}]}`,
		}

		err := newService(repo, store, client).ProcessReceipt(ctx, rec.ID.String(), false)
		require.NoError(t, err)

		assert.Equal(t, entities.ReceiptStatusCompleted, rec.Status)
		require.NotNil(t, rec.StoreName)
		assert.Equal(t, "REWE", *rec.StoreName)
		require.NotNil(t, rec.ReceiptDate)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *rec.ReceiptDate)
		// 2024-05-01 is a Wednesday; its week starts Monday the 29th.
		assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), rec.WeekOf)
		require.Len(t, repo.replacedItems, 2)
		assert.Equal(t, "Milk", repo.replacedItems[0].Name)
		assert.Equal(t, extraction.PromptWithDate, client.gotVariant)
	})

	t.Run("skip date extraction keeps stored date and week", func(t *testing.T) {
		rec := pendingReceipt()
		userDate := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
		rec.ReceiptDate = &userDate
		repo := &stubRepo{receipt: rec}
		store := &stubStorage{data: map[string][]byte{
			"public/" + rec.ImagePath: []byte("jpeg bytes"),
		}}
		client := &stubClient{
			configured: true,
			response:   `{"store_name":"ALDI","receipt_date":"2024-05-01","items":[]}`,
		}

		err := newService(repo, store, client).ProcessReceipt(ctx, rec.ID.String(), true)
		require.NoError(t, err)

		assert.Equal(t, extraction.PromptWithoutDate, client.gotVariant)
		assert.Equal(t, userDate, *rec.ReceiptDate)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), rec.WeekOf)
		assert.Equal(t, entities.ReceiptStatusCompleted, rec.Status)
	})

	t.Run("upstream failure marks receipt failed and returns error", func(t *testing.T) {
		rec := pendingReceipt()
		repo := &stubRepo{receipt: rec}
		store := &stubStorage{data: map[string][]byte{
			"public/" + rec.ImagePath: []byte("jpeg bytes"),
		}}
		client := &stubClient{
			configured: true,
			err:        &domain.UpstreamError{StatusCode: 500, Body: "internal error"},
		}

		err := newService(repo, store, client).ProcessReceipt(ctx, rec.ID.String(), false)
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
		assert.Equal(t, entities.ReceiptStatusFailed, rec.Status)
		assert.Empty(t, repo.replacedItems)
	})

	t.Run("malformed response marks receipt failed", func(t *testing.T) {
		rec := pendingReceipt()
		repo := &stubRepo{receipt: rec}
		store := &stubStorage{data: map[string][]byte{
			"public/" + rec.ImagePath: []byte("jpeg bytes"),
		}}
		client := &stubClient{configured: true, response: "no json here"}

		err := newService(repo, store, client).ProcessReceipt(ctx, rec.ID.String(), false)
		assert.ErrorIs(t, err, domain.ErrMalformedExtraction)
		assert.Equal(t, entities.ReceiptStatusFailed, rec.Status)
	})

	t.Run("missing credential fails permanently", func(t *testing.T) {
		rec := pendingReceipt()
		repo := &stubRepo{receipt: rec}
		client := &stubClient{configured: false}

		err := newService(repo, &stubStorage{}, client).ProcessReceipt(ctx, rec.ID.String(), false)
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Equal(t, entities.ReceiptStatusFailed, rec.Status)
	})

	t.Run("storage failure marks receipt failed", func(t *testing.T) {
		rec := pendingReceipt()
		repo := &stubRepo{receipt: rec}
		store := &stubStorage{err: &domain.StorageError{
			Disk: "public", Key: rec.ImagePath, Op: "get", Err: errors.New("gone"),
		}}
		client := &stubClient{configured: true}

		err := newService(repo, store, client).ProcessReceipt(ctx, rec.ID.String(), false)
		require.Error(t, err)
		assert.Equal(t, entities.ReceiptStatusFailed, rec.Status)
	})
}
