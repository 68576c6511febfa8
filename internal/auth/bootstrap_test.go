package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeIdentityStore struct {
	users    map[string]identity.User // email -> user
	password string
	signOuts []string
}

func (f *fakeIdentityStore) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	user, ok := f.users[email]
	if !ok || password != f.password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Session{
		AccessToken: "token-" + user.ID,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (f *fakeIdentityStore) SignOut(ctx context.Context, accessToken string) error {
	f.signOuts = append(f.signOuts, accessToken)
	return nil
}

func (f *fakeIdentityStore) ListUsers(ctx context.Context) ([]identity.User, error) {
	users := make([]identity.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeIdentityStore) CreateUser(ctx context.Context, email, password string) (*identity.User, error) {
	return nil, identity.ErrEmailExists
}

func (f *fakeIdentityStore) DeleteUser(ctx context.Context, id string) error {
	return nil
}

type fakeProfileStore struct {
	profiles map[string]*domain.Profile // id -> profile
}

func newFakeProfileStore(profiles ...*domain.Profile) *fakeProfileStore {
	store := &fakeProfileStore{profiles: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		store.profiles[p.ID] = p
	}
	return store
}

func (f *fakeProfileStore) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileStore) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileStore) Insert(ctx context.Context, profile *domain.Profile) error {
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileStore) DeleteByEmail(ctx context.Context, email string) error {
	for id, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			delete(f.profiles, id)
		}
	}
	return nil
}

func TestBootstrap_Login_MatchingProfileID(t *testing.T) {
	ids := &fakeIdentityStore{
		users:    map[string]identity.User{"ana@example.com": {ID: "identity-1", Email: "ana@example.com"}},
		password: "secret",
	}
	profiles := newFakeProfileStore(&domain.Profile{
		ID:    "identity-1",
		Email: "ana@example.com",
		Name:  "Ana",
		Role:  domain.RoleAdmin,
	})
	bootstrap := auth.NewBootstrap(ids, profiles, zap.NewNop())

	result, err := bootstrap.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "identity-1", result.Profile.ID)
	assert.Equal(t, domain.RoleAdmin, result.Profile.Role)
	assert.Equal(t, "token-identity-1", result.Session.AccessToken)
	assert.Empty(t, ids.signOuts)
}

func TestBootstrap_Login_InvalidCredentials(t *testing.T) {
	ids := &fakeIdentityStore{
		users:    map[string]identity.User{"ana@example.com": {ID: "identity-1", Email: "ana@example.com"}},
		password: "secret",
	}
	bootstrap := auth.NewBootstrap(ids, newFakeProfileStore(), zap.NewNop())

	result, err := bootstrap.Login(context.Background(), "ana@example.com", "wrong")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestBootstrap_Login_RepairsStaleProfileID(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ids := &fakeIdentityStore{
		users:    map[string]identity.User{"ana@example.com": {ID: "identity-new", Email: "ana@example.com"}},
		password: "secret",
	}
	profiles := newFakeProfileStore(&domain.Profile{
		ID:        "stale-id",
		Email:     "ana@example.com",
		Name:      "Ana",
		Role:      domain.RoleMaster,
		CreatedAt: createdAt,
	})
	bootstrap := auth.NewBootstrap(ids, profiles, zap.NewNop())

	result, err := bootstrap.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	// Re-keyed to the identity id, everything else carried over
	assert.Equal(t, "identity-new", result.Profile.ID)
	assert.Equal(t, "ana@example.com", result.Profile.Email)
	assert.Equal(t, "Ana", result.Profile.Name)
	assert.Equal(t, domain.RoleMaster, result.Profile.Role)
	assert.Equal(t, createdAt, result.Profile.CreatedAt)

	// The stale row is gone, exactly one profile remains
	_, err = profiles.FindByID(context.Background(), "stale-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Len(t, profiles.profiles, 1)
}

func TestBootstrap_Login_UnknownProfileRevokesSession(t *testing.T) {
	ids := &fakeIdentityStore{
		users:    map[string]identity.User{"intruder@example.com": {ID: "identity-9", Email: "intruder@example.com"}},
		password: "secret",
	}
	bootstrap := auth.NewBootstrap(ids, newFakeProfileStore(), zap.NewNop())

	result, err := bootstrap.Login(context.Background(), "intruder@example.com", "secret")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrProfileNotConfigured)
	assert.Equal(t, []string{"token-identity-9"}, ids.signOuts)
}

func TestBootstrap_Verify_RepairIsIdempotent(t *testing.T) {
	ids := &fakeIdentityStore{users: map[string]identity.User{}}
	profiles := newFakeProfileStore(&domain.Profile{
		ID:    "stale-id",
		Email: "ana@example.com",
		Role:  domain.RoleStandard,
	})
	bootstrap := auth.NewBootstrap(ids, profiles, zap.NewNop())

	first, err := bootstrap.Verify(context.Background(), "ana@example.com", "identity-new")
	require.NoError(t, err)
	assert.Equal(t, "identity-new", first.ID)

	second, err := bootstrap.Verify(context.Background(), "ana@example.com", "identity-new")
	require.NoError(t, err)
	assert.Equal(t, "identity-new", second.ID)
	assert.Len(t, profiles.profiles, 1)
}

func TestBootstrap_Verify_UnknownEmail(t *testing.T) {
	ids := &fakeIdentityStore{users: map[string]identity.User{}}
	bootstrap := auth.NewBootstrap(ids, newFakeProfileStore(), zap.NewNop())

	profile, err := bootstrap.Verify(context.Background(), "ghost@example.com", "identity-1")
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, auth.ErrProfileNotConfigured)
}
