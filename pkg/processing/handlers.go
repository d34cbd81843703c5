package processing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// NewReceiptProcessHandler adapts ProcessorService to the task runtime.
// A payload that does not unmarshal is poisoned and never retried.
func NewReceiptProcessHandler(service ProcessorService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload ReceiptProcessPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal %s payload: %v: %w", TypeReceiptProcess, err, asynq.SkipRetry)
		}
		return service.ProcessReceipt(ctx, payload.ReceiptID, payload.SkipDateExtraction)
	}
}

func NewEmailIngestHandler(service EmailIngestService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload EmailIngestPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal %s payload: %v: %w", TypeEmailIngest, err, asynq.SkipRetry)
		}
		return service.IngestEmail(ctx, payload.UserID, payload.Sender, payload.RawMessage)
	}
}
