package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/entities"
	"github.com/receiptwise/backend/internal/utils"
	"github.com/receiptwise/backend/internal/utils/storage"
)

// ProcessingQueue is the slice of the job queue this service needs: hand a
// stored receipt over to the extraction pipeline.
type ProcessingQueue interface {
	EnqueueReceiptProcessing(ctx context.Context, receiptID string, skipDateExtraction bool) error
}

type (
	ReceiptService interface {
		UploadReceipt(ctx context.Context, req domain.UploadReceiptRequest, userID string) (domain.UploadReceiptResponse, error)
		GetReceipts(ctx context.Context, userID string, page, limit int) ([]domain.ReceiptResponse, int64, error)
		GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error)
		DeleteReceipt(ctx context.Context, id string, userID string) error
		PresignUpload(ctx context.Context, req domain.PresignUploadRequest, userID string) (domain.PresignUploadResponse, error)
		ConfirmUpload(ctx context.Context, req domain.ConfirmUploadRequest, userID string) (domain.ConfirmUploadResponse, error)
		UpdateItem(ctx context.Context, itemID string, req domain.UpdateReceiptItemRequest, userID string) (domain.ReceiptItemResponse, error)
		GetCategories(ctx context.Context) ([]domain.CategoryResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		storage           storage.Storage
		queue             ProcessingQueue
		log               zerolog.Logger
	}
)

func NewReceiptService(receiptRepository ReceiptRepository, store storage.Storage, queue ProcessingQueue, log zerolog.Logger) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		storage:           store,
		queue:             queue,
		log:               log.With().Str("component", "receipt_service").Logger(),
	}
}

var allowedUploadExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func (s *receiptService) UploadReceipt(ctx context.Context, req domain.UploadReceiptRequest, userID string) (domain.UploadReceiptResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.UploadReceiptResponse{}, domain.ErrParseUUID
	}

	ext := strings.ToLower(filepath.Ext(req.Image.Filename))
	if !allowedUploadExtensions[ext] {
		return domain.UploadReceiptResponse{}, domain.ErrInvalidImageFormat
	}

	file, err := req.Image.Open()
	if err != nil {
		return domain.UploadReceiptResponse{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.UploadReceiptResponse{}, err
	}

	receiptID := uuid.New()
	key := fmt.Sprintf("receipts/%s/%s%s", userID, receiptID.String(), ext)

	contentType := req.Image.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := s.storage.Put(ctx, entities.StorageDiskPublic, key, data, contentType); err != nil {
		return domain.UploadReceiptResponse{}, err
	}

	receipt := &entities.Receipt{
		ID:               receiptID,
		UserID:           &userUUID,
		ImagePath:        key,
		OriginalFilename: req.Image.Filename,
		FileSize:         req.Image.Size,
		StorageDisk:      entities.StorageDiskPublic,
		Source:           entities.ReceiptSourceUpload,
		Status:           entities.ReceiptStatusProcessing,
		WeekOf:           utils.StartOfWeek(time.Now()),
	}

	if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
		_ = s.storage.Delete(ctx, entities.StorageDiskPublic, key)
		return domain.UploadReceiptResponse{}, err
	}

	if err := s.queue.EnqueueReceiptProcessing(ctx, receipt.ID.String(), false); err != nil {
		s.log.Error().Err(err).Str("receipt_id", receipt.ID.String()).Msg("failed to enqueue processing job")
		return domain.UploadReceiptResponse{}, err
	}

	s.log.Info().Str("receipt_id", receipt.ID.String()).Str("user_id", userID).Msg("receipt uploaded and queued")

	return domain.UploadReceiptResponse{
		ID:     receipt.ID.String(),
		Status: receipt.Status,
	}, nil
}

func (s *receiptService) GetReceipts(ctx context.Context, userID string, page, limit int) ([]domain.ReceiptResponse, int64, error) {
	receipts, count, err := s.receiptRepository.GetReceipts(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		response = append(response, toReceiptResponse(r))
	}
	return response, count, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error) {
	receipt, err := s.ownedReceipt(ctx, id, userID)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	return toReceiptResponse(receipt), nil
}

func (s *receiptService) DeleteReceipt(ctx context.Context, id string, userID string) error {
	receipt, err := s.ownedReceipt(ctx, id, userID)
	if err != nil {
		return err
	}

	// Release the stored image first; a dangling row is worse than a
	// dangling file.
	if receipt.ImagePath != "" {
		if err := s.storage.Delete(ctx, receipt.StorageDisk, receipt.ImagePath); err != nil {
			s.log.Warn().Err(err).Str("receipt_id", id).Msg("failed to delete stored image")
		}
	}

	return s.receiptRepository.DeleteReceipt(ctx, id)
}

func (s *receiptService) PresignUpload(ctx context.Context, req domain.PresignUploadRequest, userID string) (domain.PresignUploadResponse, error) {
	ext := filepath.Ext(req.Filename)

	var key string
	switch {
	case userID != "":
		key = fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New().String(), ext)
	case req.SessionID != "":
		key = fmt.Sprintf("receipts/anonymous/%s/%s%s", req.SessionID, uuid.New().String(), ext)
	default:
		return domain.PresignUploadResponse{}, domain.ErrUserNotAllowed
	}

	url, err := s.storage.PresignPut(ctx, entities.StorageDiskS3, key, req.ContentType)
	if err != nil {
		return domain.PresignUploadResponse{}, err
	}

	s.log.Info().Str("file_key", key).Int64("file_size", req.FileSize).Msg("presigned upload URL issued")

	return domain.PresignUploadResponse{
		PresignedURL: url,
		FileKey:      key,
		ExpiresIn:    600,
	}, nil
}

func (s *receiptService) ConfirmUpload(ctx context.Context, req domain.ConfirmUploadRequest, userID string) (domain.ConfirmUploadResponse, error) {
	var userUUID *uuid.UUID
	var remaining *int

	switch {
	case userID != "":
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return domain.ConfirmUploadResponse{}, domain.ErrParseUUID
		}
		userUUID = &parsed
	case req.SessionID != "":
		existing, err := s.receiptRepository.CountReceiptsBySession(ctx, req.SessionID)
		if err != nil {
			return domain.ConfirmUploadResponse{}, err
		}
		if existing+int64(len(req.Files)) > domain.AnonymousUploadLimit {
			return domain.ConfirmUploadResponse{}, domain.ErrUploadLimitReached
		}
		left := domain.AnonymousUploadLimit - int(existing) - len(req.Files)
		remaining = &left
	default:
		return domain.ConfirmUploadResponse{}, domain.ErrUserNotAllowed
	}

	// A user-supplied date means the model is told not to extract one.
	var receiptDate *time.Time
	skipDateExtraction := false
	if req.ReceiptDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReceiptDate)
		if err != nil {
			return domain.ConfirmUploadResponse{}, domain.ErrInvalidReceiptDate
		}
		receiptDate = &parsed
		skipDateExtraction = true
	}

	confirmed := make([]domain.ConfirmedReceipt, 0, len(req.Files))
	for _, f := range req.Files {
		exists, err := s.storage.Exists(ctx, entities.StorageDiskS3, f.FileKey)
		if err != nil {
			return domain.ConfirmUploadResponse{}, err
		}
		if !exists {
			return domain.ConfirmUploadResponse{}, domain.ErrFileNotUploaded
		}

		weekOf := utils.StartOfWeek(time.Now())
		if receiptDate != nil {
			weekOf = utils.StartOfWeek(*receiptDate)
		}

		receipt := &entities.Receipt{
			ID:               uuid.New(),
			UserID:           userUUID,
			SessionID:        req.SessionID,
			ImagePath:        f.FileKey,
			OriginalFilename: f.OriginalName,
			FileSize:         f.FileSize,
			StorageDisk:      entities.StorageDiskS3,
			Source:           entities.ReceiptSourceUpload,
			Status:           entities.ReceiptStatusProcessing,
			ReceiptDate:      receiptDate,
			WeekOf:           weekOf,
		}

		if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
			return domain.ConfirmUploadResponse{}, err
		}

		if err := s.queue.EnqueueReceiptProcessing(ctx, receipt.ID.String(), skipDateExtraction); err != nil {
			s.log.Error().Err(err).Str("receipt_id", receipt.ID.String()).Msg("failed to enqueue processing job")
			return domain.ConfirmUploadResponse{}, err
		}

		confirmed = append(confirmed, domain.ConfirmedReceipt{
			ID:               receipt.ID.String(),
			Status:           receipt.Status,
			OriginalFilename: f.OriginalName,
		})
	}

	s.log.Info().Int("count", len(confirmed)).Str("user_id", userID).Msg("uploaded receipts confirmed")

	return domain.ConfirmUploadResponse{
		Receipts:         confirmed,
		TotalUploaded:    len(confirmed),
		RemainingUploads: remaining,
	}, nil
}

func (s *receiptService) UpdateItem(ctx context.Context, itemID string, req domain.UpdateReceiptItemRequest, userID string) (domain.ReceiptItemResponse, error) {
	item, err := s.receiptRepository.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptItemResponse{}, domain.ErrReceiptItemNotFound
		}
		return domain.ReceiptItemResponse{}, err
	}

	if item.Receipt == nil || item.Receipt.UserID == nil || item.Receipt.UserID.String() != userID {
		return domain.ReceiptItemResponse{}, domain.ErrUnauthorizedAccess
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			return domain.ReceiptItemResponse{}, domain.ErrInvalidPrice
		}
		item.Price = price
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.IsUncertain != nil {
		item.IsUncertain = *req.IsUncertain
	}

	if err := s.receiptRepository.UpdateItem(ctx, item); err != nil {
		return domain.ReceiptItemResponse{}, err
	}

	return domain.ReceiptItemResponse{
		ID:          item.ID.String(),
		Name:        item.Name,
		Price:       item.Price,
		Category:    item.Category,
		IsUncertain: item.IsUncertain,
	}, nil
}

func (s *receiptService) GetCategories(ctx context.Context) ([]domain.CategoryResponse, error) {
	categories, err := s.receiptRepository.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]domain.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		response = append(response, domain.CategoryResponse{
			Name:  c.Name,
			Color: c.Color,
		})
	}
	return response, nil
}

func (s *receiptService) ownedReceipt(ctx context.Context, id, userID string) (*entities.Receipt, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}

	if receipt.UserID == nil || receipt.UserID.String() != userID {
		return nil, domain.ErrUnauthorizedAccess
	}
	return receipt, nil
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
		ID:              r.ID.String(),
		Source:          r.Source,
		Status:          r.Status,
		StoreName:       r.StoreName,
		ReceiptDate:     r.ReceiptDate,
		TotalAmount:     r.TotalAmount,
		WeekOf:          r.WeekOf,
		EmailSubject:    r.EmailSubject,
		EmailReceivedAt: r.EmailReceivedAt,
		Items:           items,
		CreatedAt:       r.CreatedAt,
	}
}
