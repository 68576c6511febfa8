package service

import (
	"context"
	"fmt"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/messaging"
	"github.com/cris-tech/gestao-api/internal/render"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	orderImageFileName = "OrdemDeServico.png"
	quoteImageFileName = "Orcamento.png"
)

// DocImageService drives service orders and quotes through the image
// generation workflow: pending -> generating -> done or error, with manual
// retry from error. Every render input is re-derived from the stored
// record, so a retry after an edit picks up current data.
type DocImageService struct {
	orders        *repository.ServiceOrderRepository
	quotes        *repository.QuoteRepository
	renderer      render.Renderer
	sender        messaging.Sender
	orderTemplate string
	quoteTemplate string
	logger        *zap.Logger
}

// NewDocImageService creates a new document image service
func NewDocImageService(
	orders *repository.ServiceOrderRepository,
	quotes *repository.QuoteRepository,
	renderer render.Renderer,
	sender messaging.Sender,
	orderTemplate, quoteTemplate string,
	logger *zap.Logger,
) *DocImageService {
	return &DocImageService{
		orders:        orders,
		quotes:        quotes,
		renderer:      renderer,
		sender:        sender,
		orderTemplate: orderTemplate,
		quoteTemplate: quoteTemplate,
		logger:        logger,
	}
}

// GenerateOrderImage renders the receipt image for a service order and,
// on success, notifies the client over WhatsApp. A record already done or
// currently generating is left untouched without any external call.
func (s *DocImageService) GenerateOrderImage(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load service order: %w", err)
	}

	if order.ImageStatus == domain.ImageStatusDone || order.ImageStatus == domain.ImageStatusGenerating {
		s.logger.Debug("Skipping order image generation",
			zap.String("order_id", orderID.String()),
			zap.String("image_status", string(order.ImageStatus)),
		)
		return nil
	}

	// The transition is persisted before the render call so a concurrent
	// trigger sees generating and backs off
	if err := s.orders.SetImageStatus(ctx, orderID, domain.ImageStatusGenerating); err != nil {
		return fmt.Errorf("failed to mark order generating: %w", err)
	}

	imageURL, err := s.renderer.Render(ctx, s.orderTemplate, BuildOrderFields(order))
	if err != nil || imageURL == "" {
		s.failOrder(ctx, orderID, err)
		if err == nil {
			err = render.ErrNoAssetURL
		}
		return fmt.Errorf("order image render failed: %w", err)
	}

	// Re-read before the terminal write: a double submit that already
	// completed must not be overwritten
	current, err := s.orders.GetImageStatus(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to re-read order image status: %w", err)
	}
	if current == domain.ImageStatusDone {
		return nil
	}

	if err := s.orders.MarkImageDone(ctx, orderID, imageURL); err != nil {
		return fmt.Errorf("failed to mark order image done: %w", err)
	}

	s.logger.Info("Service order image generated",
		zap.String("order_id", orderID.String()),
		zap.Int("number", order.Number),
	)

	s.notify(ctx, order.ClientPhone, imageURL, orderImageFileName)
	return nil
}

// GenerateQuoteImage renders the receipt image for a quote, with the same
// workflow as service orders.
func (s *DocImageService) GenerateQuoteImage(ctx context.Context, quoteID uuid.UUID) error {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("failed to load quote: %w", err)
	}

	if quote.ImageStatus == domain.ImageStatusDone || quote.ImageStatus == domain.ImageStatusGenerating {
		s.logger.Debug("Skipping quote image generation",
			zap.String("quote_id", quoteID.String()),
			zap.String("image_status", string(quote.ImageStatus)),
		)
		return nil
	}

	if err := s.quotes.SetImageStatus(ctx, quoteID, domain.ImageStatusGenerating); err != nil {
		return fmt.Errorf("failed to mark quote generating: %w", err)
	}

	imageURL, err := s.renderer.Render(ctx, s.quoteTemplate, BuildQuoteFields(quote))
	if err != nil || imageURL == "" {
		s.failQuote(ctx, quoteID, err)
		if err == nil {
			err = render.ErrNoAssetURL
		}
		return fmt.Errorf("quote image render failed: %w", err)
	}

	current, err := s.quotes.GetImageStatus(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("failed to re-read quote image status: %w", err)
	}
	if current == domain.ImageStatusDone {
		return nil
	}

	if err := s.quotes.MarkImageDone(ctx, quoteID, imageURL); err != nil {
		return fmt.Errorf("failed to mark quote image done: %w", err)
	}

	s.logger.Info("Quote image generated",
		zap.String("quote_id", quoteID.String()),
		zap.Int("number", quote.Number),
	)

	s.notify(ctx, quote.ClientPhone, imageURL, quoteImageFileName)
	return nil
}

// RetryOrderImage re-runs generation for an order in the error state.
// Records in pending or error are eligible; done and generating are
// handled by the entry checks in GenerateOrderImage.
func (s *DocImageService) RetryOrderImage(ctx context.Context, orderID uuid.UUID) error {
	status, err := s.orders.GetImageStatus(ctx, orderID)
	if err != nil {
		return err
	}
	if status == domain.ImageStatusError {
		if err := s.orders.SetImageStatus(ctx, orderID, domain.ImageStatusPending); err != nil {
			return err
		}
	}
	return s.GenerateOrderImage(ctx, orderID)
}

// RetryQuoteImage re-runs generation for a quote in the error state
func (s *DocImageService) RetryQuoteImage(ctx context.Context, quoteID uuid.UUID) error {
	status, err := s.quotes.GetImageStatus(ctx, quoteID)
	if err != nil {
		return err
	}
	if status == domain.ImageStatusError {
		if err := s.quotes.SetImageStatus(ctx, quoteID, domain.ImageStatusPending); err != nil {
			return err
		}
	}
	return s.GenerateQuoteImage(ctx, quoteID)
}

// notify sends the rendered image to the client, best effort. Delivery
// failure never affects the persisted document state.
func (s *DocImageService) notify(ctx context.Context, phone, imageURL, fileName string) {
	if phone == "" {
		return
	}
	number := messaging.NormalizeNumber(phone)
	if number == "" {
		return
	}
	if err := s.sender.SendMedia(ctx, number, imageURL, fileName); err != nil {
		s.logger.Warn("WhatsApp delivery failed",
			zap.String("file_name", fileName),
			zap.Error(err),
		)
	}
}

func (s *DocImageService) failOrder(ctx context.Context, orderID uuid.UUID, cause error) {
	s.logger.Error("Service order image render failed",
		zap.String("order_id", orderID.String()),
		zap.Error(cause),
	)
	if err := s.orders.SetImageStatus(ctx, orderID, domain.ImageStatusError); err != nil {
		s.logger.Error("Failed to persist order image error state",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}
}

func (s *DocImageService) failQuote(ctx context.Context, quoteID uuid.UUID, cause error) {
	s.logger.Error("Quote image render failed",
		zap.String("quote_id", quoteID.String()),
		zap.Error(cause),
	)
	if err := s.quotes.SetImageStatus(ctx, quoteID, domain.ImageStatusError); err != nil {
		s.logger.Error("Failed to persist quote image error state",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err),
		)
	}
}
