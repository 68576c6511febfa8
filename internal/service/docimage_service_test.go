package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/cris-tech/gestao-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	url        string
	err        error
	calls      int
	lastFields map[string]string
}

func (f *fakeRenderer) Render(ctx context.Context, template string, fields map[string]string) (string, error) {
	f.calls++
	f.lastFields = fields
	return f.url, f.err
}

type sentMedia struct {
	Number   string
	MediaURL string
	FileName string
}

type fakeSender struct {
	err  error
	sent []sentMedia
}

func (f *fakeSender) SendMedia(ctx context.Context, number, mediaURL, fileName string) error {
	f.sent = append(f.sent, sentMedia{Number: number, MediaURL: mediaURL, FileName: fileName})
	return f.err
}

type docImageFixture struct {
	db         *gorm.DB
	orders     *repository.ServiceOrderRepository
	quotes     *repository.QuoteRepository
	renderer   *fakeRenderer
	sender     *fakeSender
	svc        *service.DocImageService
	nextNumber int
}

func setupDocImageFixture(t *testing.T) *docImageFixture {
	db := testutil.SetupTestDB(t)
	orders := repository.NewServiceOrderRepository(db)
	quotes := repository.NewQuoteRepository(db)
	renderer := &fakeRenderer{url: "https://cdn.example.com/receipt.png"}
	sender := &fakeSender{}

	svc := service.NewDocImageService(orders, quotes, renderer, sender,
		"order-template", "quote-template", zap.NewNop())

	return &docImageFixture{
		db:       db,
		orders:   orders,
		quotes:   quotes,
		renderer: renderer,
		sender:   sender,
		svc:      svc,
	}
}

func (f *docImageFixture) createOrder(t *testing.T, status domain.ImageStatus) *domain.ServiceOrder {
	t.Helper()
	f.nextNumber++
	order := &domain.ServiceOrder{
		Number:    f.nextNumber,
		OrderDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		Status:    domain.OrderStatusOpen,
		ClientSnapshot: domain.ClientSnapshot{
			ClientName:  "Maria Silva",
			ClientPhone: "(11) 99888-7766",
		},
		ImageStatus: status,
		Total:       200,
		Materials: []domain.OrderMaterial{
			{Type: "Troca de resistência", Quantity: 1, UnitPrice: 150, LineTotal: 150, Position: 0},
			{Type: "Mão de obra", Quantity: 1, UnitPrice: 50, LineTotal: 50, Position: 1},
		},
	}
	require.NoError(t, f.orders.Create(context.Background(), order))
	return order
}

func (f *docImageFixture) createQuote(t *testing.T, status domain.ImageStatus) *domain.Quote {
	t.Helper()
	quote := &domain.Quote{
		Number:    7,
		Status:    domain.QuoteStatusPending,
		IssueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		ClientSnapshot: domain.ClientSnapshot{
			ClientName:  "João Souza",
			ClientPhone: "11987654321",
		},
		ImageStatus: status,
		Items: []domain.QuoteItem{
			{Description: "Conserto de placa", Quantity: 1, UnitPrice: 300, LineTotal: 300, Position: 0},
		},
	}
	require.NoError(t, f.quotes.Create(context.Background(), quote))
	return quote
}

func TestDocImageService_GenerateOrderImage_Success(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusPending)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
	assert.Equal(t, "https://cdn.example.com/receipt.png", reloaded.ImageURL)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "5511998887766", f.sender.sent[0].Number)
	assert.Equal(t, "https://cdn.example.com/receipt.png", f.sender.sent[0].MediaURL)
	assert.Equal(t, "OrdemDeServico.png", f.sender.sent[0].FileName)
}

func TestDocImageService_GenerateOrderImage_SkipsDone(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusPending)
	require.NoError(t, f.orders.MarkImageDone(context.Background(), order.ID, "https://cdn.example.com/old.png"))

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.renderer.calls)
	assert.Empty(t, f.sender.sent)
}

func TestDocImageService_GenerateOrderImage_SkipsGenerating(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusGenerating)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.renderer.calls)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusGenerating, reloaded.ImageStatus)
}

func TestDocImageService_GenerateOrderImage_RenderFailure(t *testing.T) {
	f := setupDocImageFixture(t)
	f.renderer.err = errors.New("render api down")
	order := f.createOrder(t, domain.ImageStatusPending)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.Error(t, err)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusError, reloaded.ImageStatus)
	assert.Empty(t, reloaded.ImageURL)
	assert.Empty(t, f.sender.sent)
}

func TestDocImageService_GenerateOrderImage_EmptyAssetURL(t *testing.T) {
	f := setupDocImageFixture(t)
	f.renderer.url = ""
	order := f.createOrder(t, domain.ImageStatusPending)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.Error(t, err)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusError, reloaded.ImageStatus)
	assert.Empty(t, reloaded.ImageURL)
}

func TestDocImageService_GenerateOrderImage_DeliveryFailureKeepsDone(t *testing.T) {
	f := setupDocImageFixture(t)
	f.sender.err = errors.New("gateway unreachable")
	order := f.createOrder(t, domain.ImageStatusPending)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
	assert.Equal(t, "https://cdn.example.com/receipt.png", reloaded.ImageURL)
}

func TestDocImageService_GenerateOrderImage_NoPhoneSkipsDelivery(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusPending)
	require.NoError(t, f.db.Model(&domain.ServiceOrder{}).
		Where("id = ?", order.ID).
		UpdateColumn("client_phone", "").Error)

	err := f.svc.GenerateOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Empty(t, f.sender.sent)
}

func TestDocImageService_RetryOrderImage_FromError(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusError)

	err := f.svc.RetryOrderImage(context.Background(), order.ID)
	require.NoError(t, err)

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
	assert.Equal(t, 1, f.renderer.calls)
}

func TestDocImageService_RetryOrderImage_DoneIsNoOp(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusPending)
	require.NoError(t, f.orders.MarkImageDone(context.Background(), order.ID, "https://cdn.example.com/old.png"))

	err := f.svc.RetryOrderImage(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.renderer.calls)
}

func TestDocImageService_GenerateQuoteImage_Success(t *testing.T) {
	f := setupDocImageFixture(t)
	quote := f.createQuote(t, domain.ImageStatusPending)

	err := f.svc.GenerateQuoteImage(context.Background(), quote.ID)
	require.NoError(t, err)

	reloaded, err := f.quotes.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
	assert.Equal(t, "https://cdn.example.com/receipt.png", reloaded.ImageURL)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "5511987654321", f.sender.sent[0].Number)
	assert.Equal(t, "Orcamento.png", f.sender.sent[0].FileName)
}

func TestDocImageService_GenerateQuoteImage_RenderFailure(t *testing.T) {
	f := setupDocImageFixture(t)
	f.renderer.err = errors.New("render api down")
	quote := f.createQuote(t, domain.ImageStatusPending)

	err := f.svc.GenerateQuoteImage(context.Background(), quote.ID)
	require.Error(t, err)

	reloaded, err := f.quotes.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusError, reloaded.ImageStatus)
	assert.Empty(t, reloaded.ImageURL)
}

func TestDocImageService_RetryQuoteImage_FromError(t *testing.T) {
	f := setupDocImageFixture(t)
	quote := f.createQuote(t, domain.ImageStatusError)

	err := f.svc.RetryQuoteImage(context.Background(), quote.ID)
	require.NoError(t, err)

	reloaded, err := f.quotes.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
}

func TestServiceOrderRepository_MarkImageDone_DoesNotOverwrite(t *testing.T) {
	f := setupDocImageFixture(t)
	order := f.createOrder(t, domain.ImageStatusPending)

	require.NoError(t, f.orders.MarkImageDone(context.Background(), order.ID, "https://cdn.example.com/first.png"))
	require.NoError(t, f.orders.MarkImageDone(context.Background(), order.ID, "https://cdn.example.com/second.png"))

	reloaded, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusDone, reloaded.ImageStatus)
	assert.Equal(t, "https://cdn.example.com/first.png", reloaded.ImageURL)
}

func TestServiceOrderRepository_ReapStuckGenerating(t *testing.T) {
	f := setupDocImageFixture(t)
	stuck := f.createOrder(t, domain.ImageStatusGenerating)
	fresh := f.createOrder(t, domain.ImageStatusGenerating)

	old := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.db.Model(&domain.ServiceOrder{}).
		Where("id = ?", stuck.ID).
		UpdateColumn("updated_at", old).Error)

	reaped, err := f.orders.ReapStuckGenerating(context.Background(), time.Now().UTC().Add(-15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), reaped)

	stuckReloaded, err := f.orders.GetByID(context.Background(), stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusError, stuckReloaded.ImageStatus)

	freshReloaded, err := f.orders.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImageStatusGenerating, freshReloaded.ImageStatus)
}
