package repository

import (
	"context"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Photos").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// UpdateWithItems saves the quote and replaces its item rows in a single
// transaction. The collection is never diffed.
func (r *QuoteRepository) UpdateWithItems(ctx context.Context, quote *domain.Quote, items []domain.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Photos").Save(quote).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuoteID = quote.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&domain.QuotePhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Quote{}, "id = ?", id).Error
	})
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, search string, status domain.QuoteStatus) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})

	if search != "" {
		query = query.Where("LOWER(client_name) LIKE LOWER(?) OR CAST(number AS TEXT) LIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Photos").
		Offset(offset).Limit(pageSize).
		Order("number DESC").
		Find(&quotes).Error

	return quotes, total, err
}

func (r *QuoteRepository) AddPhoto(ctx context.Context, photo *domain.QuotePhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *QuoteRepository) DeletePhoto(ctx context.Context, quoteID, photoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND quote_id = ?", photoID, quoteID).
		Delete(&domain.QuotePhoto{}).Error
}

// GetImageStatus reads the currently persisted generation status
func (r *QuoteRepository) GetImageStatus(ctx context.Context, id uuid.UUID) (domain.ImageStatus, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).Select("image_status").Where("id = ?", id).First(&quote).Error
	if err != nil {
		return "", err
	}
	return quote.ImageStatus, nil
}

// SetImageStatus persists a generation state transition
func (r *QuoteRepository) SetImageStatus(ctx context.Context, id uuid.UUID, status domain.ImageStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_status": status,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// MarkImageDone persists the terminal done state together with the image
// URL. The guard clause keeps a late writer from overwriting a record that
// already completed.
func (r *QuoteRepository) MarkImageDone(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ? AND image_status <> ?", id, domain.ImageStatusDone).
		Updates(map[string]interface{}{
			"image_status": domain.ImageStatusDone,
			"image_url":    imageURL,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// ReapStuckGenerating flips records stuck in the generating state for
// longer than the cutoff back to error so they can be retried. Returns the
// number of affected rows.
func (r *QuoteRepository) ReapStuckGenerating(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("image_status = ? AND updated_at < ?", domain.ImageStatusGenerating, cutoff).
		Updates(map[string]interface{}{
			"image_status": domain.ImageStatusError,
			"updated_at":   time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
