package repository_test

import (
	"context"
	"testing"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/cris-tech/gestao-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProfileRepository_FindByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProfileRepository(db)

	require.NoError(t, repo.Insert(context.Background(), &domain.Profile{
		ID:    "identity-1",
		Email: "Ana.Costa@Example.com",
		Name:  "Ana Costa",
		Role:  domain.RoleAdmin,
	}))

	found, err := repo.FindByEmail(context.Background(), "ana.costa@example.com")
	require.NoError(t, err)
	assert.Equal(t, "identity-1", found.ID)

	found, err = repo.FindByEmail(context.Background(), "ANA.COSTA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "identity-1", found.ID)

	_, err = repo.FindByEmail(context.Background(), "outra@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_DeleteByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProfileRepository(db)

	require.NoError(t, repo.Insert(context.Background(), &domain.Profile{
		ID:    "identity-1",
		Email: "Ana.Costa@Example.com",
		Role:  domain.RoleStandard,
	}))

	require.NoError(t, repo.DeleteByEmail(context.Background(), "ana.costa@example.com"))

	_, err := repo.FindByID(context.Background(), "identity-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProfileRepository(db)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
