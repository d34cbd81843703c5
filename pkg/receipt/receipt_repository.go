package receipt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/receiptwise/backend/entities"
)

type (
	ReceiptRepository interface {
		CreateReceipt(ctx context.Context, receipt *entities.Receipt) error
		GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error)
		GetReceipts(ctx context.Context, userID string, page, limit int) ([]*entities.Receipt, int64, error)
		UpdateReceipt(ctx context.Context, receipt *entities.Receipt) error
		DeleteReceipt(ctx context.Context, id string) error
		CountReceiptsBySession(ctx context.Context, sessionID string) (int64, error)

		// ReplaceItems swaps the full item set of a receipt in one
		// transaction, so a retried extraction never duplicates rows.
		ReplaceItems(ctx context.Context, receiptID uuid.UUID, items []*entities.ReceiptItem) error
		GetItemByID(ctx context.Context, id string) (*entities.ReceiptItem, error)
		UpdateItem(ctx context.Context, item *entities.ReceiptItem) error

		GetCompletedReceiptsByWeek(ctx context.Context, userID string, weekOf time.Time) ([]*entities.Receipt, error)
		SumCompletedTotalByWeek(ctx context.Context, userID string, weekOf time.Time) (decimal.Decimal, error)

		GetCategories(ctx context.Context) ([]*entities.Category, error)
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) GetReceipts(ctx context.Context, userID string, page, limit int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if err := query.Model(&entities.Receipt{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Items").Offset(offset).Limit(limit).
		Order("created_at desc").Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

func (r *receiptRepository) UpdateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *receiptRepository) DeleteReceipt(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&entities.ReceiptItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Receipt{}).Error
	})
}

func (r *receiptRepository) CountReceiptsBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Where("session_id = ? AND user_id IS NULL", sessionID).
		Count(&count).Error
	return count, err
}

func (r *receiptRepository) ReplaceItems(ctx context.Context, receiptID uuid.UUID, items []*entities.ReceiptItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", receiptID).Delete(&entities.ReceiptItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(items).Error
	})
}

func (r *receiptRepository) GetItemByID(ctx context.Context, id string) (*entities.ReceiptItem, error) {
	var item entities.ReceiptItem
	if err := r.db.WithContext(ctx).Preload("Receipt").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *receiptRepository) UpdateItem(ctx context.Context, item *entities.ReceiptItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *receiptRepository) GetCompletedReceiptsByWeek(ctx context.Context, userID string, weekOf time.Time) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND week_of = ? AND status = ?",
			userID, weekOf.Format("2006-01-02"), entities.ReceiptStatusCompleted).
		Order("created_at desc").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *receiptRepository) SumCompletedTotalByWeek(ctx context.Context, userID string, weekOf time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Select("SUM(total_amount)").
		Where("user_id = ? AND week_of = ? AND status = ?",
			userID, weekOf.Format("2006-01-02"), entities.ReceiptStatusCompleted).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *receiptRepository) GetCategories(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
