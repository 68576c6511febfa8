package repository_test

import (
	"context"
	"testing"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/cris-tech/gestao-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	first, err := repo.GetNextNumber(context.Background(), domain.SequenceScopeServiceOrder)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.GetNextNumber(context.Background(), domain.SequenceScopeServiceOrder)
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestNumberSequenceRepository_ScopesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	for i := 0; i < 3; i++ {
		_, err := repo.GetNextNumber(context.Background(), domain.SequenceScopeServiceOrder)
		require.NoError(t, err)
	}

	quoteNumber, err := repo.GetNextNumber(context.Background(), domain.SequenceScopeQuote)
	require.NoError(t, err)
	assert.Equal(t, 1, quoteNumber)

	orderCurrent, err := repo.GetCurrentSequence(context.Background(), domain.SequenceScopeServiceOrder)
	require.NoError(t, err)
	assert.Equal(t, 3, orderCurrent)
}

func TestNumberSequenceRepository_SetSequence_NeverLowers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	require.NoError(t, repo.SetSequence(context.Background(), domain.SequenceScopeQuote, 100))

	current, err := repo.GetCurrentSequence(context.Background(), domain.SequenceScopeQuote)
	require.NoError(t, err)
	assert.Equal(t, 100, current)

	require.NoError(t, repo.SetSequence(context.Background(), domain.SequenceScopeQuote, 50))

	current, err = repo.GetCurrentSequence(context.Background(), domain.SequenceScopeQuote)
	require.NoError(t, err)
	assert.Equal(t, 100, current)

	next, err := repo.GetNextNumber(context.Background(), domain.SequenceScopeQuote)
	require.NoError(t, err)
	assert.Equal(t, 101, next)
}
