package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type Service struct {
	tables   interfaces.TableRepository
	logger   logger.Logger
	location *time.Location
	now      func() time.Time
}

func NewService(tables interfaces.TableRepository, logger logger.Logger, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		tables:   tables,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

func (s *Service) RegisterTable(ctx context.Context, cmd interfaces.RegisterTableCommand) (*domain.Table, error) {
	table, err := domain.NewTable(cmd.CompanyID, cmd.Number, cmd.Capacity, cmd.Location, cmd.Shape)
	if err != nil {
		return nil, err
	}

	if err := s.tables.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("register table %d: %w", cmd.Number, err)
	}

	s.logger.Info("table_registered", fmt.Sprintf("Table %d registered", table.Number), logger.RequestID(ctx), map[string]interface{}{
		"company_id": table.CompanyID,
		"table_id":   table.ID,
		"capacity":   table.Capacity,
	})
	return table, nil
}

// SetStatus overwrites the advisory status of a table.
func (s *Service) SetStatus(ctx context.Context, tableID int64, status domain.TableStatus) (*domain.Table, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidTableStatus
	}
	table, err := s.tables.UpdateStatus(ctx, tableID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("table_status_set", "Table status overridden", logger.RequestID(ctx), map[string]interface{}{
		"table_id": tableID,
		"status":   status,
	})
	return table, nil
}

func (s *Service) Deactivate(ctx context.Context, tableID int64) (*domain.Table, error) {
	now := s.now().In(s.location)

	table, err := s.tables.Deactivate(ctx, tableID, now, func(t *domain.Table, holding []*domain.Reservation) error {
		return t.Deactivate(holding, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table_deactivated", fmt.Sprintf("Table %d deactivated", table.Number), logger.RequestID(ctx), map[string]interface{}{
		"table_id": tableID,
	})
	return table, nil
}

func (s *Service) GetTable(ctx context.Context, tableID int64) (*domain.Table, error) {
	return s.tables.FindByID(ctx, tableID)
}

func (s *Service) ListTables(ctx context.Context, companyID int64) ([]*domain.Table, error) {
	return s.tables.ListByCompany(ctx, companyID)
}
