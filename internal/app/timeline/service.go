package timeline

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

// Service exposes the order status history. It never validates transitions;
// the order aggregate does that before anything reaches the log.
type Service struct {
	repo   interfaces.TimelineRepository
	logger logger.Logger
}

func NewService(repo interfaces.TimelineRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Append(ctx context.Context, orderID int64, status domain.Status, actor *int64, notes *string) (*domain.OrderTimelineEvent, error) {
	event, err := domain.NewTimelineEvent(orderID, status, actor, notes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Debug("timeline_appended", "Timeline event appended", logger.RequestID(ctx), map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return event, nil
}

func (s *Service) ListForOrder(ctx context.Context, orderID int64) ([]*domain.OrderTimelineEvent, error) {
	return s.repo.ListForOrder(ctx, orderID)
}
