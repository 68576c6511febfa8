package auth

import (
	"context"
	"errors"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/identity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned when the identity provider rejects
	// a sign-in attempt. The message is deliberately generic.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrProfileNotConfigured is returned when an identity account has no
	// matching profile, or the profile could not be reconciled. The session
	// created for the attempt is revoked before this is returned.
	ErrProfileNotConfigured = errors.New("user profile not configured")
)

// ProfileStore is the subset of profile persistence the bootstrap needs
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Insert(ctx context.Context, profile *domain.Profile) error
	DeleteByEmail(ctx context.Context, email string) error
}

// Bootstrap resolves identity provider accounts to application profiles.
//
// The profile primary key is expected to equal the identity user id, but
// manual provisioning and data migrations can leave a profile keyed by a
// stale id. Bootstrap repairs that at sign-in: the profile row is re-keyed
// to the current identity id while everything else (email, name, role,
// created_at) is preserved.
type Bootstrap struct {
	identityStore identity.Store
	profiles      ProfileStore
	logger        *zap.Logger
}

// LoginResult is the authorized outcome of a login attempt
type LoginResult struct {
	Profile *domain.Profile
	Session *identity.Session
}

// NewBootstrap creates a new session bootstrap service
func NewBootstrap(identityStore identity.Store, profiles ProfileStore, logger *zap.Logger) *Bootstrap {
	return &Bootstrap{
		identityStore: identityStore,
		profiles:      profiles,
		logger:        logger,
	}
}

// Login signs the user in with the identity provider and resolves their
// profile, repairing a stale profile id when needed. Exactly one of three
// outcomes is produced: a LoginResult, ErrInvalidCredentials, or
// ErrProfileNotConfigured. No identity session survives a
// ErrProfileNotConfigured outcome.
func (b *Bootstrap) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	session, err := b.identityStore.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		b.logger.Error("Identity sign-in failed", zap.Error(err))
		return nil, ErrInvalidCredentials
	}

	profile, err := b.resolve(ctx, session.User.Email, session.User.ID)
	if err != nil {
		b.revoke(ctx, session.AccessToken)
		return nil, err
	}

	return &LoginResult{Profile: profile, Session: session}, nil
}

// Verify resolves (and repairs if needed) the profile for an already
// authenticated identity, without a password exchange. Used by the auth
// middleware on every request.
func (b *Bootstrap) Verify(ctx context.Context, email, identityID string) (*domain.Profile, error) {
	return b.resolve(ctx, email, identityID)
}

// resolve looks the profile up by identity id, falling back to email with
// an id repair. Re-invocation with the same inputs is idempotent.
func (b *Bootstrap) resolve(ctx context.Context, email, identityID string) (*domain.Profile, error) {
	profile, err := b.profiles.FindByID(ctx, identityID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		b.logger.Error("Profile lookup by id failed", zap.Error(err))
		return nil, ErrProfileNotConfigured
	}

	stale, err := b.profiles.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			b.logger.Error("Profile lookup by email failed", zap.Error(err))
		}
		return nil, ErrProfileNotConfigured
	}

	repaired, err := b.repair(ctx, stale, identityID)
	if err != nil {
		b.logger.Error("Profile id repair failed",
			zap.String("email", email),
			zap.String("stale_id", stale.ID),
			zap.Error(err),
		)
		return nil, ErrProfileNotConfigured
	}
	return repaired, nil
}

// repair re-keys a profile to the current identity id. Only id and
// updated_at change; email, name, role and created_at carry over. The
// delete and insert are separate statements, so a concurrent reader can
// briefly see no profile for the email; the next sign-in converges.
func (b *Bootstrap) repair(ctx context.Context, stale *domain.Profile, identityID string) (*domain.Profile, error) {
	if stale.ID == identityID {
		return stale, nil
	}

	if err := b.profiles.DeleteByEmail(ctx, stale.Email); err != nil {
		return nil, err
	}

	repaired := &domain.Profile{
		ID:        identityID,
		Email:     stale.Email,
		Name:      stale.Name,
		Role:      stale.Role,
		CreatedAt: stale.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := b.profiles.Insert(ctx, repaired); err != nil {
		return nil, err
	}

	b.logger.Info("Repaired profile identity id",
		zap.String("email", stale.Email),
		zap.String("old_id", stale.ID),
		zap.String("new_id", identityID),
	)
	return repaired, nil
}

// revoke signs the identity session out, best effort
func (b *Bootstrap) revoke(ctx context.Context, accessToken string) {
	if err := b.identityStore.SignOut(ctx, accessToken); err != nil {
		b.logger.Warn("Failed to revoke identity session", zap.Error(err))
	}
}
