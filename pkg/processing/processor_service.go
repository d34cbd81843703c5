package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/internal/utils/storage"
	"github.com/receiptwise/backend/pkg/extraction"
	"github.com/receiptwise/backend/pkg/receipt"
)

type (
	// ProcessorService drives one receipt through
	// optimize → extract → parse → persist. Each invocation is one attempt;
	// the queue runtime re-invokes it on failure, from the top.
	ProcessorService interface {
		ProcessReceipt(ctx context.Context, receiptID string, skipDateExtraction bool) error
	}

	processorService struct {
		receiptRepository receipt.ReceiptRepository
		storage           storage.Storage
		optimizer         *extraction.Optimizer
		client            extraction.Client
		log               zerolog.Logger
	}
)

func NewProcessorService(
	receiptRepository receipt.ReceiptRepository,
	store storage.Storage,
	optimizer *extraction.Optimizer,
	client extraction.Client,
	log zerolog.Logger,
) ProcessorService {
	return &processorService{
		receiptRepository: receiptRepository,
		storage:           store,
		optimizer:         optimizer,
		client:            client,
		log:               log.With().Str("component", "receipt_processor").Logger(),
	}
}

func (s *processorService) ProcessReceipt(ctx context.Context, receiptID string, skipDateExtraction bool) error {
	log := s.log.With().Str("receipt_id", receiptID).Logger()
	log.Info().Bool("skip_date_extraction", skipDateExtraction).Msg("receipt processing started")

	rec, err := s.receiptRepository.GetReceiptByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted between enqueue and dispatch; nothing to retry.
			log.Warn().Msg("receipt no longer exists, dropping job")
			return fmt.Errorf("receipt %s not found: %w", receiptID, asynq.SkipRetry)
		}
		return err
	}

	// A missing credential cannot heal between attempts.
	if !s.client.Configured() {
		log.Error().Msg("no API credential configured, failing permanently")
		s.markFailed(ctx, rec)
		return fmt.Errorf("%v: %w", domain.ErrAPIKeyMissing, asynq.SkipRetry)
	}

	if rec.Status != entities.ReceiptStatusProcessing {
		rec.Status = entities.ReceiptStatusProcessing
		if err := s.receiptRepository.UpdateReceipt(ctx, rec); err != nil {
			return err
		}
	}

	imageData, err := s.storage.Get(ctx, rec.StorageDisk, rec.ImagePath)
	if err != nil {
		log.Error().Err(err).Str("disk", rec.StorageDisk).Str("key", rec.ImagePath).
			Msg("failed to fetch receipt image")
		s.markFailed(ctx, rec)
		return err
	}
	log.Debug().Int("image_size", len(imageData)).Msg("receipt image fetched")

	optimized := s.optimizer.Optimize(imageData)

	variant := extraction.PromptWithDate
	if skipDateExtraction {
		variant = extraction.PromptWithoutDate
	}

	rawResponse, err := s.client.ExtractReceipt(ctx, optimized, variant)
	if err != nil {
		log.Error().Err(err).Msg("vision extraction call failed")
		s.markFailed(ctx, rec)
		return err
	}
	log.Debug().Int("response_length", len(rawResponse)).Msg("vision extraction returned")

	result, err := extraction.ParseResponse(rawResponse, skipDateExtraction)
	if err != nil {
		log.Error().Err(err).Str("raw_response", rawResponse).Msg("failed to parse extraction response")
		s.markFailed(ctx, rec)
		return err
	}

	if err := s.persistResult(ctx, rec, result, skipDateExtraction); err != nil {
		log.Error().Err(err).Msg("failed to persist extraction result")
		s.markFailed(ctx, rec)
		return err
	}

	log.Info().Int("item_count", len(result.Items)).Msg("receipt processing completed")
	return nil
}

func (s *processorService) persistResult(ctx context.Context, rec *entities.Receipt, result *extraction.Result, skipDateExtraction bool) error {
	rec.StoreName = result.StoreName
	rec.TotalAmount = result.TotalAmount

	// With date extraction skipped, whatever date and week the receipt
	// already carries stand.
	if !skipDateExtraction && result.ReceiptDate != nil {
		rec.ReceiptDate = result.ReceiptDate
		rec.WeekOf = utils.StartOfWeek(*result.ReceiptDate)
	}

	items := make([]*entities.ReceiptItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, &entities.ReceiptItem{
			ReceiptID:   rec.ID,
			Name:        item.Name,
			Price:       item.Price,
			Category:    item.Category,
			IsUncertain: item.IsUncertain,
		})
	}

	// Replace, never append: a retried attempt overwrites the previous
	// attempt's rows instead of duplicating them.
	if err := s.receiptRepository.ReplaceItems(ctx, rec.ID, items); err != nil {
		return err
	}

	rec.Status = entities.ReceiptStatusCompleted
	return s.receiptRepository.UpdateReceipt(ctx, rec)
}

// markFailed records the failure on the receipt row. The error itself still
// propagates to the queue runtime, which decides whether another attempt is
// due; a later successful attempt moves the receipt to completed.
func (s *processorService) markFailed(ctx context.Context, rec *entities.Receipt) {
	rec.Status = entities.ReceiptStatusFailed
	if err := s.receiptRepository.UpdateReceipt(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("receipt_id", rec.ID.String()).Msg("failed to mark receipt failed")
	}
}
