package processing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	TypeReceiptProcess = "receipt:process"
	TypeEmailIngest    = "email:ingest"
)

const (
	// maxRetry bounds re-attempts of one job; retryDeadline bounds them in
	// wall-clock time from first enqueue. Whichever is hit first wins and
	// the receipt stays failed.
	maxRetry      = 3
	retryDeadline = 15 * time.Minute

	receiptProcessTimeout = 5 * time.Minute
	emailIngestTimeout    = 5 * time.Minute
)

type ReceiptProcessPayload struct {
	ReceiptID          string `json:"receipt_id"`
	SkipDateExtraction bool   `json:"skip_date_extraction"`
}

type EmailIngestPayload struct {
	UserID     string `json:"user_id"`
	Sender     string `json:"sender"`
	RawMessage string `json:"raw_message"`
}

// Queue enqueues background work. Callers fire and forget; the queue
// runtime owns retry scheduling and failure bookkeeping.
type Queue interface {
	EnqueueReceiptProcessing(ctx context.Context, receiptID string, skipDateExtraction bool) error
	EnqueueEmailIngestion(ctx context.Context, userID, sender, rawMessage string) error
}

type asynqQueue struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewQueue(client *asynq.Client, log zerolog.Logger) Queue {
	return &asynqQueue{
		client: client,
		log:    log.With().Str("component", "queue").Logger(),
	}
}

func (q *asynqQueue) EnqueueReceiptProcessing(ctx context.Context, receiptID string, skipDateExtraction bool) error {
	payload, err := json.Marshal(ReceiptProcessPayload{
		ReceiptID:          receiptID,
		SkipDateExtraction: skipDateExtraction,
	})
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeReceiptProcess, payload),
		asynq.MaxRetry(maxRetry),
		asynq.Deadline(time.Now().Add(retryDeadline)),
		asynq.Timeout(receiptProcessTimeout),
	)
	if err != nil {
		return err
	}

	q.log.Info().Str("task_id", info.ID).Str("receipt_id", receiptID).
		Bool("skip_date_extraction", skipDateExtraction).Msg("receipt processing job enqueued")
	return nil
}

func (q *asynqQueue) EnqueueEmailIngestion(ctx context.Context, userID, sender, rawMessage string) error {
	payload, err := json.Marshal(EmailIngestPayload{
		UserID:     userID,
		Sender:     sender,
		RawMessage: rawMessage,
	})
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeEmailIngest, payload),
		asynq.MaxRetry(maxRetry),
		asynq.Deadline(time.Now().Add(retryDeadline)),
		asynq.Timeout(emailIngestTimeout),
	)
	if err != nil {
		return err
	}

	q.log.Info().Str("task_id", info.ID).Str("user_id", userID).Msg("email ingestion job enqueued")
	return nil
}
