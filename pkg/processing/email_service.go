package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/internal/utils/storage"
	"github.com/receiptwise/backend/pkg/mailparse"
	"github.com/receiptwise/backend/pkg/receipt"
	"github.com/receiptwise/backend/pkg/user"
)

const defaultEmailSubject = "No Subject"

type (
	// EmailIngestService turns one forwarded email into zero or more
	// pending receipts, one per recovered image attachment.
	EmailIngestService interface {
		ResolveEligibleUser(ctx context.Context, sender string) (*entities.User, error)
		IngestEmail(ctx context.Context, userID, sender, rawMessage string) error
	}

	emailIngestService struct {
		userRepository    user.UserRepository
		receiptRepository receipt.ReceiptRepository
		storage           storage.Storage
		extractor         *mailparse.Extractor
		queue             Queue
		log               zerolog.Logger
	}
)

func NewEmailIngestService(
	userRepository user.UserRepository,
	receiptRepository receipt.ReceiptRepository,
	store storage.Storage,
	extractor *mailparse.Extractor,
	queue Queue,
	log zerolog.Logger,
) EmailIngestService {
	return &emailIngestService{
		userRepository:    userRepository,
		receiptRepository: receiptRepository,
		storage:           store,
		extractor:         extractor,
		queue:             queue,
		log:               log.With().Str("component", "email_ingest").Logger(),
	}
}

// ResolveEligibleUser maps a sender address to an account allowed to submit
// receipts by email. The webhook calls this before any message parsing so
// ineligible senders cost nothing.
func (s *emailIngestService) ResolveEligibleUser(ctx context.Context, sender string) (*entities.User, error) {
	u, err := s.userRepository.GetUserByEmail(ctx, sender)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if !u.CanReceiveEmailReceipts() {
		return nil, domain.ErrNotEligible
	}
	return u, nil
}

func (s *emailIngestService) IngestEmail(ctx context.Context, userID, sender, rawMessage string) error {
	log := s.log.With().Str("user_id", userID).Str("sender", sender).Logger()

	subject := mailparse.Header(rawMessage, "Subject")
	if subject == "" {
		subject = defaultEmailSubject
	}

	attachments := s.extractor.Extract(rawMessage)
	if len(attachments) == 0 {
		log.Info().Str("subject", subject).Msg("no image attachments found in email")
		return nil
	}
	log.Info().Str("subject", subject).Int("attachment_count", len(attachments)).
		Msg("email attachments extracted")

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	receivedAt := time.Now()
	var stored int
	for i, attachment := range attachments {
		if err := s.ingestAttachment(ctx, userUUID, subject, receivedAt, attachment); err != nil {
			// One bad attachment must not sink its siblings.
			log.Error().Err(err).Int("attachment_index", i).
				Str("filename", attachment.Filename).Msg("failed to ingest attachment")
			continue
		}
		stored++
	}

	log.Info().Int("stored", stored).Int("total", len(attachments)).Msg("email ingestion finished")
	return nil
}

func (s *emailIngestService) ingestAttachment(ctx context.Context, userID uuid.UUID, subject string, receivedAt time.Time, attachment mailparse.Attachment) error {
	key := fmt.Sprintf("receipts/email/%s/%d_%s",
		userID.String(), time.Now().UnixNano(), filepath.Base(attachment.Filename))

	if err := s.storage.Put(ctx, entities.StorageDiskPublic, key, attachment.Content, attachment.ContentType); err != nil {
		return err
	}

	rec := &entities.Receipt{
		UserID:           &userID,
		ImagePath:        key,
		OriginalFilename: attachment.Filename,
		FileSize:         int64(len(attachment.Content)),
		StorageDisk:      entities.StorageDiskPublic,
		Status:           entities.ReceiptStatusPending,
		Source:           entities.ReceiptSourceEmail,
		WeekOf:           utils.StartOfWeek(receivedAt),
		EmailSubject:     subject,
		EmailReceivedAt:  &receivedAt,
	}
	if err := s.receiptRepository.CreateReceipt(ctx, rec); err != nil {
		// Orphaned object; the receipt row is the source of truth.
		if delErr := s.storage.Delete(ctx, entities.StorageDiskPublic, key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("failed to clean up stored attachment")
		}
		return err
	}

	if err := s.queue.EnqueueReceiptProcessing(ctx, rec.ID.String(), false); err != nil {
		// Without a job the receipt would sit in pending forever; the
		// status has to carry the failure instead.
		rec.Status = entities.ReceiptStatusFailed
		if updErr := s.receiptRepository.UpdateReceipt(ctx, rec); updErr != nil {
			s.log.Error().Err(updErr).Str("receipt_id", rec.ID.String()).Msg("failed to mark receipt failed")
		}
		return err
	}
	return nil
}
