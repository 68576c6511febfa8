package repository

import (
	"context"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceOrderRepository struct {
	db *gorm.DB
}

func NewServiceOrderRepository(db *gorm.DB) *ServiceOrderRepository {
	return &ServiceOrderRepository{db: db}
}

func (r *ServiceOrderRepository) Create(ctx context.Context, order *domain.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *ServiceOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceOrder, error) {
	var order domain.ServiceOrder
	err := r.db.WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateWithMaterials saves the order and replaces its material rows in a
// single transaction. The collection is never diffed.
func (r *ServiceOrderRepository) UpdateWithMaterials(ctx context.Context, order *domain.ServiceOrder, materials []domain.OrderMaterial) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Materials").Save(order).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&domain.OrderMaterial{}).Error; err != nil {
			return err
		}
		for i := range materials {
			materials[i].OrderID = order.ID
		}
		if len(materials) > 0 {
			if err := tx.Create(&materials).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ServiceOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&domain.ServiceOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *ServiceOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderMaterial{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.ServiceOrder{}, "id = ?", id).Error
	})
}

func (r *ServiceOrderRepository) List(ctx context.Context, page, pageSize int, search string, status domain.OrderStatus) ([]domain.ServiceOrder, int64, error) {
	var orders []domain.ServiceOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ServiceOrder{})

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
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Offset(offset).Limit(pageSize).
		Order("number DESC").
		Find(&orders).Error

	return orders, total, err
}

// GetImageStatus reads the currently persisted generation status
func (r *ServiceOrderRepository) GetImageStatus(ctx context.Context, id uuid.UUID) (domain.ImageStatus, error) {
	var order domain.ServiceOrder
	err := r.db.WithContext(ctx).Select("image_status").Where("id = ?", id).First(&order).Error
	if err != nil {
		return "", err
	}
	return order.ImageStatus, nil
}

// SetImageStatus persists a generation state transition
func (r *ServiceOrderRepository) SetImageStatus(ctx context.Context, id uuid.UUID, status domain.ImageStatus) error {
	return r.db.WithContext(ctx).Model(&domain.ServiceOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_status": status,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// MarkImageDone persists the terminal done state together with the image
// URL. The guard clause keeps a late writer from overwriting a record that
// already completed.
func (r *ServiceOrderRepository) MarkImageDone(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).Model(&domain.ServiceOrder{}).
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
func (r *ServiceOrderRepository) ReapStuckGenerating(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.ServiceOrder{}).
		Where("image_status = ? AND updated_at < ?", domain.ImageStatusGenerating, cutoff).
		Updates(map[string]interface{}{
			"image_status": domain.ImageStatusError,
			"updated_at":   time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
