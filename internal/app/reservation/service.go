package reservation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type Service struct {
	tables       interfaces.TableRepository
	reservations interfaces.ReservationRepository
	publisher    interfaces.MessagePublisher
	logger       logger.Logger
}

func NewService(
	tables interfaces.TableRepository,
	reservations interfaces.ReservationRepository,
	publisher interfaces.MessagePublisher,
	logger logger.Logger,
) *Service {
	if publisher == nil {
		publisher = interfaces.NopPublisher{}
	}
	return &Service{
		tables:       tables,
		reservations: reservations,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *Service) RequestReservation(ctx context.Context, cmd interfaces.RequestReservationCommand) (*domain.Reservation, error) {
	requestID := logger.RequestID(ctx)

	// Cheap checks first, so malformed requests never take the table lock.
	if cmd.PartySize < 1 {
		return nil, domain.ErrInvalidPartySize
	}
	slot, err := domain.NewSlot(cmd.Date, cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.CreateWithNoOverlap(ctx, cmd.TableID, slot.Date, func(table *domain.Table, existing []*domain.Reservation) (*domain.Reservation, error) {
		return domain.NewReservation(table, slot, cmd.PartySize, cmd.Customer, cmd.Source, existing)
	})
	if err != nil {
		var conflict *domain.SlotConflictError
		if errors.As(err, &conflict) {
			s.logger.Debug("reservation_conflict", "Requested slot is taken", requestID, map[string]interface{}{
				"table_id":                cmd.TableID,
				"slot":                    slot.String(),
				"conflicting_reservation": conflict.ReservationID,
			})
		}
		return nil, err
	}

	s.logger.Info("reservation_confirmed", fmt.Sprintf("Reservation %d confirmed", res.ID), requestID, map[string]interface{}{
		"table_id":   res.TableID,
		"slot":       slot.String(),
		"party_size": res.PartySize,
	})
	s.notify(ctx, res, "")

	return res, nil
}

func (s *Service) Transition(ctx context.Context, reservationID int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	var oldStatus domain.ReservationStatus

	res, err := s.reservations.Update(ctx, reservationID, func(r *domain.Reservation) error {
		oldStatus = r.Status
		return r.TransitionTo(status)
	})
	if err != nil {
		return nil, err
	}

	// Table status is advisory; a failure here does not undo the transition.
	if tableStatus, ok := domain.TableStatusAfter(res.Status); ok {
		if _, err := s.tables.UpdateStatus(ctx, res.TableID, tableStatus); err != nil {
			s.logger.Error("table_status_failed", "Failed to update table status", logger.RequestID(ctx), map[string]interface{}{
				"table_id": res.TableID,
				"status":   tableStatus,
			}, err)
		}
	}

	s.logger.Info("reservation_transitioned", fmt.Sprintf("Reservation %d is %s", res.ID, res.Status), logger.RequestID(ctx), map[string]interface{}{
		"old_status": oldStatus,
		"new_status": res.Status,
	})
	s.notify(ctx, res, oldStatus)

	return res, nil
}

// FindAvailableTables returns the active tables of the company that seat the
// party and are free for the whole window. The result is a snapshot taken at
// call time; ranging over it never touches the store.
func (s *Service) FindAvailableTables(ctx context.Context, q interfaces.AvailabilityQuery) (iter.Seq[*domain.Table], error) {
	if q.PartySize < 1 {
		return nil, domain.ErrInvalidPartySize
	}
	slot, err := domain.NewSlot(q.Date, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	tables, err := s.tables.ListByCompany(ctx, q.CompanyID)
	if err != nil {
		return nil, err
	}
	holding, err := s.reservations.ListHoldingByCompanyAndDate(ctx, q.CompanyID, slot.Date)
	if err != nil {
		return nil, err
	}

	return domain.AvailableTables(tables, holding, slot, q.PartySize), nil
}

func (s *Service) GetReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	return s.reservations.FindByID(ctx, reservationID)
}

func (s *Service) ListForTable(ctx context.Context, tableID int64, date time.Time) ([]*domain.Reservation, error) {
	if _, err := s.tables.FindByID(ctx, tableID); err != nil {
		return nil, err
	}
	return s.reservations.ListByTableAndDate(ctx, tableID, date)
}

func (s *Service) notify(ctx context.Context, res *domain.Reservation, oldStatus domain.ReservationStatus) {
	msg := interfaces.StatusUpdateMessage{
		Entity:    interfaces.EntityReservation,
		EntityID:  res.ID,
		Reference: res.Slot().String(),
		CompanyID: res.CompanyID,
		OldStatus: string(oldStatus),
		NewStatus: string(res.Status),
		Timestamp: res.UpdatedAt,
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish reservation update", logger.RequestID(ctx), map[string]interface{}{
			"reservation_id": res.ID,
		}, err)
	}
}
