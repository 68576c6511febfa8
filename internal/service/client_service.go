package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/mapper"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{
		Name:       req.Name,
		Type:       domain.ClientType(req.Type),
		TaxID:      req.TaxID,
		Email:      req.Email,
		Phone:      req.Phone,
		Mobile:     req.Mobile,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		LegalName:  req.LegalName,
		TradeName:  req.TradeName,
		Notes:      req.Notes,
	}

	if session, ok := auth.FromContext(ctx); ok {
		client.CreatedBy = session.ProfileID
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.Name = req.Name
	client.Type = domain.ClientType(req.Type)
	client.TaxID = req.TaxID
	client.Email = req.Email
	client.Phone = req.Phone
	client.Mobile = req.Mobile
	client.Street = req.Street
	client.Number = req.Number
	client.Complement = req.Complement
	client.District = req.District
	client.City = req.City
	client.State = req.State
	client.PostalCode = req.PostalCode
	client.LegalName = req.LegalName
	client.TradeName = req.TradeName
	client.Notes = req.Notes

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
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
