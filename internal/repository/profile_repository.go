package repository

import (
	"context"

	"github.com/cris-tech/gestao-api/internal/domain"
	"gorm.io/gorm"
)

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByEmail matches the email case-insensitively
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Insert(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *ProfileRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).Delete(&domain.Profile{}).Error
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Profile{}, "id = ?", id).Error
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}
