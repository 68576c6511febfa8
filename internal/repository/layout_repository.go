package repository

import (
	"context"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LayoutRepository struct {
	db *gorm.DB
}

func NewLayoutRepository(db *gorm.DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

func (r *LayoutRepository) Create(ctx context.Context, layout *domain.Layout) error {
	return r.db.WithContext(ctx).Create(layout).Error
}

func (r *LayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Layout, error) {
	var layout domain.Layout
	err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&layout).Error
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

// UpdateWithFields saves the layout and replaces its field rows in a
// single transaction
func (r *LayoutRepository) UpdateWithFields(ctx context.Context, layout *domain.Layout, fields []domain.LayoutField) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Fields").Save(layout).Error; err != nil {
			return err
		}
		if err := tx.Where("layout_id = ?", layout.ID).Delete(&domain.LayoutField{}).Error; err != nil {
			return err
		}
		for i := range fields {
			fields[i].LayoutID = layout.ID
		}
		if len(fields) > 0 {
			if err := tx.Create(&fields).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LayoutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("layout_id = ?", id).Delete(&domain.LayoutField{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Layout{}, "id = ?", id).Error
	})
}

func (r *LayoutRepository) List(ctx context.Context) ([]domain.Layout, error) {
	var layouts []domain.Layout
	err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("name ASC").
		Find(&layouts).Error
	return layouts, err
}
