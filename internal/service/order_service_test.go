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

type orderServiceFixture struct {
	db       *gorm.DB
	orders   *repository.ServiceOrderRepository
	renderer *fakeRenderer
	sender   *fakeSender
	svc      *service.OrderService
}

func setupOrderService(t *testing.T) *orderServiceFixture {
	db := testutil.SetupTestDB(t)
	orders := repository.NewServiceOrderRepository(db)
	quotes := repository.NewQuoteRepository(db)
	clients := repository.NewClientRepository(db)
	seqs := repository.NewNumberSequenceRepository(db)
	renderer := &fakeRenderer{url: "https://cdn.example.com/receipt.png"}
	sender := &fakeSender{}

	docImages := service.NewDocImageService(orders, quotes, renderer, sender,
		"order-template", "quote-template", zap.NewNop())
	svc := service.NewOrderService(orders, clients, seqs, docImages, zap.NewNop())

	return &orderServiceFixture{
		db:       db,
		orders:   orders,
		renderer: renderer,
		sender:   sender,
		svc:      svc,
	}
}

func (f *orderServiceFixture) waitForImageStatus(t *testing.T, id uuid.UUID, want domain.ImageStatus) {
	t.Helper()
	assert.Eventually(t, func() bool {
		status, err := f.orders.GetImageStatus(context.Background(), id)
		return err == nil && status == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOrderService_Create(t *testing.T) {
	f := setupOrderService(t)
	client := testutil.CreateTestClient(t, f.db, "Maria Silva")

	dto, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate:      "2025-07-03",
		ClientID:       &client.ID,
		Notes:          "Equipamento com ruído",
		WarrantyMonths: 3,
		VisitFee:       50,
		Materials: []domain.OrderMaterialRequest{
			{Type: "Troca de resistência", Quantity: 1, UnitPrice: 150},
			{Type: "Mão de obra", Quantity: 2, UnitPrice: 25},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.Number)
	assert.Equal(t, domain.OrderStatusOpen, dto.Status)
	assert.Equal(t, "2025-07-03", dto.OrderDate)
	assert.Equal(t, 250.0, dto.Total)
	assert.Equal(t, "2025-10-03", dto.WarrantyExpiresAt)

	// Snapshot captured from the client record
	assert.Equal(t, "Maria Silva", dto.ClientName)
	assert.Equal(t, "Rua das Flores, 100 - Centro", dto.ClientAddress)
	assert.Equal(t, "São Paulo", dto.ClientCity)

	require.Len(t, dto.Materials, 2)
	assert.Equal(t, 150.0, dto.Materials[0].LineTotal)
	assert.Equal(t, 50.0, dto.Materials[1].LineTotal)
	assert.Equal(t, 0, dto.Materials[0].Position)
	assert.Equal(t, 1, dto.Materials[1].Position)

	// Receipt generation runs in the background and completes
	f.waitForImageStatus(t, dto.ID, domain.ImageStatusDone)
}

func TestOrderService_Create_SequentialNumbers(t *testing.T) {
	f := setupOrderService(t)

	req := &domain.CreateServiceOrderRequest{
		OrderDate: "2025-07-03",
		Materials: []domain.OrderMaterialRequest{{Type: "Serviço", Quantity: 1, UnitPrice: 100}},
	}

	first, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
}

func TestOrderService_Create_InvalidDate(t *testing.T) {
	f := setupOrderService(t)

	_, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate: "03/07/2025",
		Materials: []domain.OrderMaterialRequest{{Type: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestOrderService_Create_UnknownClient(t *testing.T) {
	f := setupOrderService(t)
	missing := uuid.New()

	_, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate: "2025-07-03",
		ClientID:  &missing,
		Materials: []domain.OrderMaterialRequest{{Type: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestOrderService_Update_ReplacesMaterialsAndRegenerates(t *testing.T) {
	f := setupOrderService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate: "2025-07-03",
		Materials: []domain.OrderMaterialRequest{
			{Type: "Peça A", Quantity: 1, UnitPrice: 100},
			{Type: "Peça B", Quantity: 1, UnitPrice: 200},
		},
	})
	require.NoError(t, err)
	f.waitForImageStatus(t, created.ID, domain.ImageStatusDone)

	updated, err := f.svc.Update(context.Background(), created.ID, &domain.UpdateServiceOrderRequest{
		OrderDate: "2025-07-04",
		Status:    string(domain.OrderStatusInProgress),
		VisitFee:  30,
		Materials: []domain.OrderMaterialRequest{
			{Type: "Peça C", Quantity: 3, UnitPrice: 40},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusInProgress, updated.Status)
	assert.Equal(t, 150.0, updated.Total)
	require.Len(t, updated.Materials, 1)
	assert.Equal(t, "Peça C", updated.Materials[0].Type)
	assert.Equal(t, 120.0, updated.Materials[0].LineTotal)

	// Old materials are gone, not merged
	var count int64
	require.NoError(t, f.db.Model(&domain.OrderMaterial{}).
		Where("order_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The stale receipt was discarded and a new one generated
	f.waitForImageStatus(t, created.ID, domain.ImageStatusDone)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := setupOrderService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate: "2025-07-03",
		Materials: []domain.OrderMaterialRequest{{Type: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), created.ID, domain.OrderStatusCompleted))

	reloaded, err := f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, reloaded.Status)

	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), created.ID, domain.OrderStatus("inexistente")), service.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusOpen), service.ErrNotFound)
}

func TestOrderService_Delete(t *testing.T) {
	f := setupOrderService(t)

	created, err := f.svc.Create(context.Background(), &domain.CreateServiceOrderRequest{
		OrderDate: "2025-07-03",
		Materials: []domain.OrderMaterialRequest{{Type: "Serviço", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.ID))

	_, err = f.svc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), uuid.New()), service.ErrNotFound)
}
