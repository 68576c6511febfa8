package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/cris-tech/gestao-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type quoteServiceFixture struct {
	db     *gorm.DB
	quotes *repository.QuoteRepository
	svc    *service.QuoteService
}

func setupQuoteService(t *testing.T) *quoteServiceFixture {
	db := testutil.SetupTestDB(t)
	orders := repository.NewServiceOrderRepository(db)
	quotes := repository.NewQuoteRepository(db)
	clients := repository.NewClientRepository(db)
	seqs := repository.NewNumberSequenceRepository(db)

	docImages := service.NewDocImageService(orders, quotes,
		&fakeRenderer{url: "https://cdn.example.com/receipt.png"}, &fakeSender{},
		"order-template", "quote-template", zap.NewNop())
	svc := service.NewQuoteService(quotes, clients, seqs, docImages, zap.NewNop())

	return &quoteServiceFixture{db: db, quotes: quotes, svc: svc}
}

func TestQuoteService_Create(t *testing.T) {
	f := setupQuoteService(t)
	client := testutil.CreateTestClient(t, f.db, "João Souza")

	dto, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		ClientID:    &client.ID,
		IssueDate:   "2025-08-15",
		ValidUntil:  "2025-09-15",
		Description: "Reforma do painel",
		Items: []domain.QuoteItemRequest{
			{Description: "Pintura", Quantity: 2, UnitPrice: 100},
			{Description: "Acabamento", Quantity: 1, UnitPrice: 80},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.Number)
	assert.Equal(t, domain.QuoteStatusPending, dto.Status)
	assert.Equal(t, "2025-08-15", dto.IssueDate)
	assert.Equal(t, "2025-09-15", dto.ValidUntil)
	assert.Equal(t, "João Souza", dto.ClientName)

	require.Len(t, dto.Items, 2)
	assert.Equal(t, 200.0, dto.Items[0].LineTotal)
	assert.Equal(t, 80.0, dto.Items[1].LineTotal)
}

func TestQuoteService_List_LazyExpiry(t *testing.T) {
	f := setupQuoteService(t)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	nextMonth := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")

	expired, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		IssueDate:  yesterday,
		ValidUntil: yesterday,
		Items:      []domain.QuoteItemRequest{{Description: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	current, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		IssueDate:  yesterday,
		ValidUntil: nextMonth,
		Items:      []domain.QuoteItemRequest{{Description: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	resp, err := f.svc.List(context.Background(), 1, 20, "", "")
	require.NoError(t, err)

	dtos, ok := resp.Data.([]domain.QuoteDTO)
	require.True(t, ok)
	statuses := make(map[uuid.UUID]domain.QuoteStatus, len(dtos))
	for _, d := range dtos {
		statuses[d.ID] = d.Status
	}
	assert.Equal(t, domain.QuoteStatusExpired, statuses[expired.ID])
	assert.Equal(t, domain.QuoteStatusPending, statuses[current.ID])

	// The expiry is persisted, not just rewritten in the response
	reloaded, err := f.quotes.GetByID(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusExpired, reloaded.Status)
}

func TestQuoteService_Update_ReplacesItems(t *testing.T) {
	f := setupQuoteService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		IssueDate: "2025-08-15",
		Items: []domain.QuoteItemRequest{
			{Description: "Pintura", Quantity: 2, UnitPrice: 100},
		},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), created.ID, &domain.UpdateQuoteRequest{
		IssueDate: "2025-08-16",
		Items: []domain.QuoteItemRequest{
			{Description: "Polimento", Quantity: 1, UnitPrice: 250},
			{Description: "Cera", Quantity: 2, UnitPrice: 50},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Polimento", updated.Items[0].Description)
	assert.Equal(t, 350.0, updated.Total)

	var count int64
	require.NoError(t, f.db.Model(&domain.QuoteItem{}).
		Where("quote_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestQuoteService_UpdateStatus(t *testing.T) {
	f := setupQuoteService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		IssueDate: "2025-08-15",
		Items:     []domain.QuoteItemRequest{{Description: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), created.ID, domain.QuoteStatusApproved))

	reloaded, err := f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusApproved, reloaded.Status)

	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), created.ID, domain.QuoteStatus("inexistente")), service.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), uuid.New(), domain.QuoteStatusApproved), service.ErrNotFound)
}

func TestQuoteService_Photos(t *testing.T) {
	f := setupQuoteService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateQuoteRequest{
		IssueDate: "2025-08-15",
		Items:     []domain.QuoteItemRequest{{Description: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	photo, err := f.svc.AddPhoto(context.Background(), created.ID, &domain.AddQuotePhotoRequest{
		URL:         "https://cdn.example.com/antes.jpg",
		Description: "Estado antes do reparo",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/antes.jpg", photo.URL)

	reloaded, err := f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Photos, 1)

	require.NoError(t, f.svc.DeletePhoto(context.Background(), created.ID, photo.ID))

	reloaded, err = f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Photos)
}

func TestQuoteService_AddPhoto_UnknownQuote(t *testing.T) {
	f := setupQuoteService(t)

	_, err := f.svc.AddPhoto(context.Background(), uuid.New(), &domain.AddQuotePhotoRequest{
		URL: "https://cdn.example.com/foto.jpg",
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
