package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/mapper"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// generationDeadline bounds a detached background generation run
const generationDeadline = 2 * time.Minute

type OrderService struct {
	orderRepo  *repository.ServiceOrderRepository
	clientRepo *repository.ClientRepository
	seqRepo    *repository.NumberSequenceRepository
	docImages  *DocImageService
	logger     *zap.Logger
}

func NewOrderService(
	orderRepo *repository.ServiceOrderRepository,
	clientRepo *repository.ClientRepository,
	seqRepo *repository.NumberSequenceRepository,
	docImages *DocImageService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		clientRepo: clientRepo,
		seqRepo:    seqRepo,
		docImages:  docImages,
		logger:     logger,
	}
}

// Create persists a new service order with a sequential number and a
// denormalized client snapshot, then kicks off image generation in the
// background.
func (s *OrderService) Create(ctx context.Context, req *domain.CreateServiceOrderRequest) (*domain.ServiceOrderDTO, error) {
	orderDate, err := time.Parse(dateLayout, req.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order date", ErrInvalidInput)
	}

	status := domain.OrderStatusOpen
	if req.Status != "" {
		status = domain.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid order status", ErrInvalidInput)
		}
	}

	order := &domain.ServiceOrder{
		OrderDate:      orderDate,
		ClientID:       req.ClientID,
		Status:         status,
		Notes:          req.Notes,
		WarrantyMonths: req.WarrantyMonths,
		VisitFee:       req.VisitFee,
	}

	if req.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *req.ClientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		order.ClientSnapshot = snapshotFromClient(client)
	}

	order.Materials = buildOrderMaterials(req.Materials)
	order.Total = materialsTotal(order.Materials) + order.VisitFee

	if order.WarrantyMonths > 0 {
		expires := orderDate.AddDate(0, order.WarrantyMonths, 0)
		order.WarrantyExpiresAt = &expires
	}

	number, err := s.seqRepo.GetNextNumber(ctx, domain.SequenceScopeServiceOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to get order number: %w", err)
	}
	order.Number = number

	if session, ok := auth.FromContext(ctx); ok {
		order.CreatedBy = session.ProfileID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create service order: %w", err)
	}

	s.triggerGeneration(ctx, order.ID)

	dto := mapper.ToServiceOrderDTO(order)
	return &dto, nil
}

// Update replaces the editable fields and the full material set, resets
// the image state and regenerates the receipt from the new data.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateServiceOrderRequest) (*domain.ServiceOrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service order: %w", err)
	}

	orderDate, err := time.Parse(dateLayout, req.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order date", ErrInvalidInput)
	}

	if req.Status != "" {
		status := domain.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid order status", ErrInvalidInput)
		}
		order.Status = status
	}

	order.OrderDate = orderDate
	order.Notes = req.Notes
	order.WarrantyMonths = req.WarrantyMonths
	order.VisitFee = req.VisitFee

	order.WarrantyExpiresAt = nil
	if order.WarrantyMonths > 0 {
		expires := orderDate.AddDate(0, order.WarrantyMonths, 0)
		order.WarrantyExpiresAt = &expires
	}

	materials := buildOrderMaterials(req.Materials)
	order.Total = materialsTotal(materials) + order.VisitFee

	// The stored receipt no longer matches the data; regenerate from scratch
	order.ImageStatus = domain.ImageStatusPending
	order.ImageURL = ""

	if err := s.orderRepo.UpdateWithMaterials(ctx, order, materials); err != nil {
		return nil, fmt.Errorf("failed to update service order: %w", err)
	}

	s.triggerGeneration(ctx, order.ID)

	updated, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload service order: %w", err)
	}

	dto := mapper.ToServiceOrderDTO(updated)
	return &dto, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid order status", ErrInvalidInput)
	}
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get service order: %w", err)
	}
	return s.orderRepo.UpdateStatus(ctx, id, status)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceOrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service order: %w", err)
	}

	dto := mapper.ToServiceOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get service order: %w", err)
	}
	return s.orderRepo.Delete(ctx, id)
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, search string, status domain.OrderStatus) (*domain.PaginatedResponse, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, search, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list service orders: %w", err)
	}

	dtos := make([]domain.ServiceOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToServiceOrderDTO(&orders[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// RetryImage re-runs receipt generation for an order whose last attempt
// failed. Runs synchronously so the caller sees the outcome.
func (s *OrderService) RetryImage(ctx context.Context, id uuid.UUID) error {
	err := s.docImages.RetryOrderImage(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// triggerGeneration starts image generation decoupled from the request
// context. If the process dies mid-flight the record can be left in
// generating; the reaper job flips such records back to error.
func (s *OrderService) triggerGeneration(ctx context.Context, id uuid.UUID) {
	detached := context.WithoutCancel(ctx)
	go func() {
		genCtx, cancel := context.WithTimeout(detached, generationDeadline)
		defer cancel()
		if err := s.docImages.GenerateOrderImage(genCtx, id); err != nil {
			s.logger.Warn("Background order image generation failed",
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
		}
	}()
}

func snapshotFromClient(client *domain.Client) domain.ClientSnapshot {
	return domain.ClientSnapshot{
		ClientName:    client.Name,
		ClientAddress: client.AddressLine(),
		ClientCity:    client.City,
		ClientState:   client.State,
		ClientTaxID:   client.TaxID,
		ClientEmail:   client.Email,
		ClientPhone:   client.ContactPhone(),
	}
}

func buildOrderMaterials(reqs []domain.OrderMaterialRequest) []domain.OrderMaterial {
	materials := make([]domain.OrderMaterial, len(reqs))
	for i, m := range reqs {
		materials[i] = domain.OrderMaterial{
			Type:      m.Type,
			Quantity:  m.Quantity,
			UnitPrice: m.UnitPrice,
			LineTotal: m.Quantity * m.UnitPrice,
			Position:  i,
		}
	}
	return materials
}

func materialsTotal(materials []domain.OrderMaterial) float64 {
	total := 0.0
	for _, m := range materials {
		total += m.LineTotal
	}
	return total
}
