package processing

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/pkg/mailparse"
)

type stubUserRepo struct {
	user *entities.User
}

func (s *stubUserRepo) CreateUser(_ context.Context, _ *entities.User) error { return nil }
func (s *stubUserRepo) GetUserByID(_ context.Context, _ string) (*entities.User, error) {
	if s.user == nil {
		return nil, errors.New("record not found")
	}
	return s.user, nil
}
func (s *stubUserRepo) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, errors.New("record not found")
	}
	return s.user, nil
}
func (s *stubUserRepo) UpdateUser(_ context.Context, _ *entities.User) error { return nil }

type captureRepo struct {
	stubRepo
	created   []*entities.Receipt
	createErr error
}

func (c *captureRepo) CreateReceipt(_ context.Context, r *entities.Receipt) error {
	if c.createErr != nil {
		return c.createErr
	}
	r.ID = uuid.New()
	c.created = append(c.created, r)
	return nil
}

type stubQueue struct {
	processed []string
	err       error
}

func (q *stubQueue) EnqueueReceiptProcessing(_ context.Context, receiptID string, _ bool) error {
	if q.err != nil {
		return q.err
	}
	q.processed = append(q.processed, receiptID)
	return nil
}
func (q *stubQueue) EnqueueEmailIngestion(_ context.Context, _, _, _ string) error { return nil }

func attachmentEmail(subject string, filenames ...string) string {
	payload := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 2048)))
	var b strings.Builder
	b.WriteString("From: pro@example.com\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=\"frontier\"\r\n\r\n")
	for _, fn := range filenames {
		b.WriteString("--frontier\r\n")
		b.WriteString("Content-Type: image/jpeg; name=\"" + fn + "\"\r\n")
		b.WriteString("Content-Disposition: attachment; filename=\"" + fn + "\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(payload)
		b.WriteString("\r\n")
	}
	b.WriteString("--frontier--\r\n")
	return b.String()
}

func TestResolveEligibleUser(t *testing.T) {
	ctx := context.Background()

	newService := func(users *stubUserRepo) EmailIngestService {
		return NewEmailIngestService(users, &captureRepo{}, &stubStorage{}, mailparse.NewExtractor(zerolog.Nop()), &stubQueue{}, zerolog.Nop())
	}

	t.Run("unknown sender", func(t *testing.T) {
		_, err := newService(&stubUserRepo{}).ResolveEligibleUser(ctx, "stranger@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("free tier is rejected", func(t *testing.T) {
		users := &stubUserRepo{user: &entities.User{
			ID: uuid.New(), Email: "free@example.com",
			Tier: entities.TierFree, EmailReceiptsEnabled: true,
		}}
		_, err := newService(users).ResolveEligibleUser(ctx, "free@example.com")
		assert.ErrorIs(t, err, domain.ErrNotEligible)
	})

	t.Run("pro tier with feature disabled is rejected", func(t *testing.T) {
		users := &stubUserRepo{user: &entities.User{
			ID: uuid.New(), Email: "pro@example.com",
			Tier: entities.TierPro, EmailReceiptsEnabled: false,
		}}
		_, err := newService(users).ResolveEligibleUser(ctx, "pro@example.com")
		assert.ErrorIs(t, err, domain.ErrNotEligible)
	})

	t.Run("pro tier with feature enabled passes", func(t *testing.T) {
		users := &stubUserRepo{user: &entities.User{
			ID: uuid.New(), Email: "pro@example.com",
			Tier: entities.TierPro, EmailReceiptsEnabled: true,
		}}
		u, err := newService(users).ResolveEligibleUser(ctx, "pro@example.com")
		require.NoError(t, err)
		assert.Equal(t, "pro@example.com", u.Email)
	})
}

func TestIngestEmail(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("one receipt per attachment, all queued", func(t *testing.T) {
		repo := &captureRepo{}
		queue := &stubQueue{}
		store := &stubStorage{}
		service := NewEmailIngestService(&stubUserRepo{}, repo, store, mailparse.NewExtractor(zerolog.Nop()), queue, zerolog.Nop())

		raw := attachmentEmail("Weekly shop", "a.jpg", "b.jpg")
		require.NoError(t, service.IngestEmail(ctx, userID.String(), "pro@example.com", raw))

		assert.Equal(t, []string{"image/jpeg", "image/jpeg"}, store.putContentTypes)
		require.Len(t, repo.created, 2)
		for _, rec := range repo.created {
			assert.Equal(t, entities.ReceiptSourceEmail, rec.Source)
			assert.Equal(t, entities.ReceiptStatusPending, rec.Status)
			assert.Equal(t, "Weekly shop", rec.EmailSubject)
			assert.Equal(t, entities.StorageDiskPublic, rec.StorageDisk)
			require.NotNil(t, rec.UserID)
			assert.Equal(t, userID, *rec.UserID)
			assert.NotNil(t, rec.EmailReceivedAt)
		}
		assert.Len(t, queue.processed, 2)
	})

	t.Run("missing subject falls back", func(t *testing.T) {
		repo := &captureRepo{}
		service := NewEmailIngestService(&stubUserRepo{}, repo, &stubStorage{}, mailparse.NewExtractor(zerolog.Nop()), &stubQueue{}, zerolog.Nop())

		raw := strings.Replace(attachmentEmail("placeholder", "a.jpg"), "Subject: placeholder\r\n", "", 1)
		require.NoError(t, service.IngestEmail(ctx, userID.String(), "pro@example.com", raw))

		require.Len(t, repo.created, 1)
		assert.Equal(t, "No Subject", repo.created[0].EmailSubject)
	})

	t.Run("email without attachments is a non-event", func(t *testing.T) {
		repo := &captureRepo{}
		queue := &stubQueue{}
		service := NewEmailIngestService(&stubUserRepo{}, repo, &stubStorage{}, mailparse.NewExtractor(zerolog.Nop()), queue, zerolog.Nop())

		raw := "From: pro@example.com\r\nSubject: no pics\r\n\r\njust text"
		require.NoError(t, service.IngestEmail(ctx, userID.String(), "pro@example.com", raw))
		assert.Empty(t, repo.created)
		assert.Empty(t, queue.processed)
	})

	t.Run("enqueue failure marks the receipt failed", func(t *testing.T) {
		repo := &captureRepo{}
		queue := &stubQueue{err: errors.New("redis down")}
		service := NewEmailIngestService(&stubUserRepo{}, repo, &stubStorage{}, mailparse.NewExtractor(zerolog.Nop()), queue, zerolog.Nop())

		raw := attachmentEmail("Weekly shop", "a.jpg")
		require.NoError(t, service.IngestEmail(ctx, userID.String(), "pro@example.com", raw))

		require.Len(t, repo.created, 1)
		assert.Equal(t, entities.ReceiptStatusFailed, repo.created[0].Status)
		assert.Empty(t, queue.processed)
	})

	t.Run("persistence failure does not fail the whole email", func(t *testing.T) {
		repo := &captureRepo{createErr: errors.New("db down")}
		queue := &stubQueue{}
		service := NewEmailIngestService(&stubUserRepo{}, repo, &stubStorage{}, mailparse.NewExtractor(zerolog.Nop()), queue, zerolog.Nop())

		raw := attachmentEmail("Weekly shop", "a.jpg", "b.jpg")
		require.NoError(t, service.IngestEmail(ctx, userID.String(), "pro@example.com", raw))
		assert.Empty(t, queue.processed)
	})
}
