package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/identity"
	"github.com/cris-tech/gestao-api/internal/mapper"
	"github.com/cris-tech/gestao-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService administers identity accounts and their application
// profiles. Master-only; the router enforces the role.
type UserService struct {
	identityStore identity.Store
	profileRepo   *repository.ProfileRepository
	logger        *zap.Logger
}

func NewUserService(identityStore identity.Store, profileRepo *repository.ProfileRepository, logger *zap.Logger) *UserService {
	return &UserService{
		identityStore: identityStore,
		profileRepo:   profileRepo,
		logger:        logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.ProfileDTO, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	dtos := make([]domain.ProfileDTO, len(profiles))
	for i := range profiles {
		dtos[i] = mapper.ToProfileDTO(&profiles[i])
	}
	return dtos, nil
}

// Create registers an identity account and its profile. When the email is
// already registered with the provider the existing account is reused and
// only the profile is (re)created, so a half-finished earlier attempt can
// be completed by running the operation again.
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.ProfileDTO, error) {
	role := domain.RoleStandard
	if req.Role != "" {
		role = domain.ProfileRole(req.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: invalid role", ErrInvalidInput)
		}
	}

	user, err := s.identityStore.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, identity.ErrEmailExists) {
			return nil, fmt.Errorf("failed to create identity user: %w", err)
		}
		user, err = s.findIdentityUserByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
	}

	if existing, err := s.profileRepo.FindByID(ctx, user.ID); err == nil {
		return nil, fmt.Errorf("%w: profile already exists for %s", ErrConflict, existing.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        user.ID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profileRepo.Insert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", profile.ID),
		zap.String("role", string(profile.Role)),
	)

	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

func (s *UserService) Update(ctx context.Context, id string, req *domain.UpdateUserRequest) (*domain.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if req.Role != "" {
		role := domain.ProfileRole(req.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: invalid role", ErrInvalidInput)
		}
		profile.Role = role
	}
	profile.Name = req.Name
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

// Delete removes the profile and then the identity account. An identity
// deletion failure is logged but not surfaced; the account without a
// profile cannot sign in anyway.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.profileRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if err := s.identityStore.DeleteUser(ctx, id); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		s.logger.Warn("Failed to delete identity user",
			zap.String("user_id", id),
			zap.Error(err),
		)
	}
	return nil
}

func (s *UserService) findIdentityUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	users, err := s.identityStore.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity users: %w", err)
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: identity account for %s not found", ErrConflict, email)
}
