package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/mapper"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LayoutService struct {
	layoutRepo *repository.LayoutRepository
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLayoutService(layoutRepo *repository.LayoutRepository, logger *zap.Logger) *LayoutService {
	return &LayoutService{
		layoutRepo: layoutRepo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (s *LayoutService) Create(ctx context.Context, req *domain.CreateLayoutRequest) (*domain.LayoutDTO, error) {
	layout := &domain.Layout{
		Name:        req.Name,
		WebhookURL:  req.WebhookURL,
		Description: req.Description,
		Fields:      buildLayoutFields(req.Fields),
	}

	if session, ok := auth.FromContext(ctx); ok {
		layout.CreatedBy = session.ProfileID
	}

	if err := s.layoutRepo.Create(ctx, layout); err != nil {
		return nil, fmt.Errorf("failed to create layout: %w", err)
	}

	dto := mapper.ToLayoutDTO(layout)
	return &dto, nil
}

func (s *LayoutService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LayoutDTO, error) {
	layout, err := s.layoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	dto := mapper.ToLayoutDTO(layout)
	return &dto, nil
}

func (s *LayoutService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLayoutRequest) (*domain.LayoutDTO, error) {
	layout, err := s.layoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	layout.Name = req.Name
	layout.WebhookURL = req.WebhookURL
	layout.Description = req.Description

	fields := buildLayoutFields(req.Fields)
	if err := s.layoutRepo.UpdateWithFields(ctx, layout, fields); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}

	updated, err := s.layoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload layout: %w", err)
	}

	dto := mapper.ToLayoutDTO(updated)
	return &dto, nil
}

func (s *LayoutService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.layoutRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get layout: %w", err)
	}
	return s.layoutRepo.Delete(ctx, id)
}

func (s *LayoutService) List(ctx context.Context) ([]domain.LayoutDTO, error) {
	layouts, err := s.layoutRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	dtos := make([]domain.LayoutDTO, len(layouts))
	for i := range layouts {
		dtos[i] = mapper.ToLayoutDTO(&layouts[i])
	}
	return dtos, nil
}

// Dispatch forwards a batch of filled-in rows to the layout's webhook.
// The payload shape ({layout, itens}) is part of the webhook contract.
func (s *LayoutService) Dispatch(ctx context.Context, id uuid.UUID, req *domain.DispatchLayoutRequest) error {
	layout, err := s.layoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get layout: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"layout": layout.Name,
		"itens":  req.Items,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, layout.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webhook dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook dispatch failed with status %d: %s", resp.StatusCode, string(raw))
	}

	s.logger.Info("Layout batch dispatched",
		zap.String("layout_id", id.String()),
		zap.String("layout", layout.Name),
		zap.Int("items", len(req.Items)),
	)
	return nil
}

func buildLayoutFields(reqs []domain.LayoutFieldRequest) []domain.LayoutField {
	fields := make([]domain.LayoutField, len(reqs))
	for i, f := range reqs {
		fields[i] = domain.LayoutField{
			Name:     f.Name,
			Type:     domain.FieldType(f.Type),
			Options:  f.Options,
			Position: i,
			Required: f.Required,
		}
	}
	return fields
}
