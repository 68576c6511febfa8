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

type QuoteService struct {
	quoteRepo  *repository.QuoteRepository
	clientRepo *repository.ClientRepository
	seqRepo    *repository.NumberSequenceRepository
	docImages  *DocImageService
	logger     *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	clientRepo *repository.ClientRepository,
	seqRepo *repository.NumberSequenceRepository,
	docImages *DocImageService,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:  quoteRepo,
		clientRepo: clientRepo,
		seqRepo:    seqRepo,
		docImages:  docImages,
		logger:     logger,
	}
}

// Create persists a new quote with a sequential number and a denormalized
// client snapshot, then kicks off image generation in the background.
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid issue date", ErrInvalidInput)
	}

	quote := &domain.Quote{
		ClientID:    req.ClientID,
		Status:      domain.QuoteStatusPending,
		IssueDate:   issueDate,
		Description: req.Description,
		Notes:       req.Notes,
	}

	if req.ValidUntil != "" {
		validUntil, err := time.Parse(dateLayout, req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid valid-until date", ErrInvalidInput)
		}
		quote.ValidUntil = &validUntil
	}

	if req.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *req.ClientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		quote.ClientSnapshot = snapshotFromClient(client)
	}

	quote.Items = buildQuoteItems(req.Items)

	number, err := s.seqRepo.GetNextNumber(ctx, domain.SequenceScopeQuote)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote number: %w", err)
	}
	quote.Number = number

	if session, ok := auth.FromContext(ctx); ok {
		quote.CreatedBy = session.ProfileID
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.triggerGeneration(ctx, quote.ID)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Update replaces the editable fields and the full item set, resets the
// image state and regenerates the receipt from the new data.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid issue date", ErrInvalidInput)
	}
	quote.IssueDate = issueDate

	quote.ValidUntil = nil
	if req.ValidUntil != "" {
		validUntil, err := time.Parse(dateLayout, req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid valid-until date", ErrInvalidInput)
		}
		quote.ValidUntil = &validUntil
	}

	if req.Status != "" {
		status := domain.QuoteStatus(req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid quote status", ErrInvalidInput)
		}
		quote.Status = status
	}

	quote.Description = req.Description
	quote.Notes = req.Notes

	items := buildQuoteItems(req.Items)

	// The stored receipt no longer matches the data; regenerate from scratch
	quote.ImageStatus = domain.ImageStatusPending
	quote.ImageURL = ""

	if err := s.quoteRepo.UpdateWithItems(ctx, quote, items); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	s.triggerGeneration(ctx, quote.ID)

	updated, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(updated)
	return &dto, nil
}

// UpdateStatus moves a quote between approval states
func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid quote status", ErrInvalidInput)
	}
	if _, err := s.quoteRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get quote: %w", err)
	}
	return s.quoteRepo.UpdateStatus(ctx, id, status)
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.quoteRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get quote: %w", err)
	}
	return s.quoteRepo.Delete(ctx, id)
}

// List returns quotes with lazy expiry applied: a pending quote whose
// validity window has passed is rewritten to expired before being
// returned, so callers never see a stale pending status.
func (s *QuoteService) List(ctx context.Context, page, pageSize int, search string, status domain.QuoteStatus) (*domain.PaginatedResponse, error) {
	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, search, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := range quotes {
		q := &quotes[i]
		if q.Status != domain.QuoteStatusPending || q.ValidUntil == nil {
			continue
		}
		if q.ValidUntil.Before(today) {
			if err := s.quoteRepo.UpdateStatus(ctx, q.ID, domain.QuoteStatusExpired); err != nil {
				s.logger.Warn("Failed to expire quote",
					zap.String("quote_id", q.ID.String()),
					zap.Error(err),
				)
				continue
			}
			q.Status = domain.QuoteStatusExpired
		}
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
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

func (s *QuoteService) AddPhoto(ctx context.Context, quoteID uuid.UUID, req *domain.AddQuotePhotoRequest) (*domain.QuotePhotoDTO, error) {
	if _, err := s.quoteRepo.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	photo := &domain.QuotePhoto{
		QuoteID:     quoteID,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := s.quoteRepo.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to add quote photo: %w", err)
	}

	dto := mapper.ToQuotePhotoDTO(photo)
	return &dto, nil
}

func (s *QuoteService) DeletePhoto(ctx context.Context, quoteID, photoID uuid.UUID) error {
	return s.quoteRepo.DeletePhoto(ctx, quoteID, photoID)
}

// RetryImage re-runs receipt generation for a quote whose last attempt
// failed. Runs synchronously so the caller sees the outcome.
func (s *QuoteService) RetryImage(ctx context.Context, id uuid.UUID) error {
	err := s.docImages.RetryQuoteImage(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *QuoteService) triggerGeneration(ctx context.Context, id uuid.UUID) {
	detached := context.WithoutCancel(ctx)
	go func() {
		genCtx, cancel := context.WithTimeout(detached, generationDeadline)
		defer cancel()
		if err := s.docImages.GenerateQuoteImage(genCtx, id); err != nil {
			s.logger.Warn("Background quote image generation failed",
				zap.String("quote_id", id.String()),
				zap.Error(err),
			)
		}
	}()
}

func buildQuoteItems(reqs []domain.QuoteItemRequest) []domain.QuoteItem {
	items := make([]domain.QuoteItem, len(reqs))
	for i, it := range reqs {
		items[i] = domain.QuoteItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.Quantity * it.UnitPrice,
			Position:    i,
		}
	}
	return items
}
