package service

import (
	"context"
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/repository"
	"go.uber.org/zap"
)

// ticketTypeService implements TicketTypeService
type ticketTypeService struct {
	tx                repository.TxManager
	eventRepo         repository.EventRepository
	sessionRepo       repository.SessionRepository
	ticketTypeRepo    repository.TicketTypeRepository
	participationRepo repository.ParticipationRepository
}

// NewTicketTypeService creates a new TicketTypeService
func NewTicketTypeService(
	tx repository.TxManager,
	eventRepo repository.EventRepository,
	sessionRepo repository.SessionRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	participationRepo repository.ParticipationRepository,
) TicketTypeService {
	return &ticketTypeService{
		tx:                tx,
		eventRepo:         eventRepo,
		sessionRepo:       sessionRepo,
		ticketTypeRepo:    ticketTypeRepo,
		participationRepo: participationRepo,
	}
}

// CreateTicketType adds a ticket type to an event. Every included session
// must already exist on the event.
func (s *ticketTypeService) CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error) {
	var result *domain.TicketTypeWithAvailability
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		sessions, err := s.sessionRepo.ListByEvent(ctx, eventID)
		if err != nil {
			return err
		}

		tt, err := domain.NewTicketType(req.ToDomain(eventID), sessions, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := s.ticketTypeRepo.Create(ctx, tt); err != nil {
			return err
		}

		result, err = s.withAvailability(ctx, event, tt, sessions)
		return err
	})
	if err != nil {
		return nil, fail(ctx, "CreateTicketType", err, zap.String("event_id", eventID))
	}
	return result, nil
}

// GetTicketType retrieves a ticket type with its availability
func (s *ticketTypeService) GetTicketType(ctx context.Context, id string) (*domain.TicketTypeWithAvailability, error) {
	const op = "GetTicketType"
	tt, err := s.ticketTypeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("ticket_type_id", id))
	}
	if tt == nil {
		return nil, domain.ErrTicketTypeNotFound
	}

	event, err := s.eventRepo.GetByID(ctx, tt.EventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("ticket_type_id", id))
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	sessions, err := s.sessionRepo.ListByEvent(ctx, tt.EventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("ticket_type_id", id))
	}

	result, err := s.withAvailability(ctx, event, tt, sessions)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("ticket_type_id", id))
	}
	return result, nil
}

// ListTicketTypes lists an event's ticket types by sort order with availability
func (s *ticketTypeService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketTypeWithAvailability, error) {
	const op = "ListTicketTypes"
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	ticketTypes, err := s.ticketTypeRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	sessions, err := s.sessionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	active, err := s.participationRepo.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	remaining := max(event.Capacity-active, 0)

	out := make([]domain.TicketTypeWithAvailability, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		a, err := domain.TicketTypeAvailabilityOf(tt, sessions, remaining)
		if err != nil {
			return nil, fail(ctx, op, err, zap.String("ticket_type_id", tt.ID))
		}
		out = append(out, domain.TicketTypeWithAvailability{TicketType: tt, Availability: a})
	}
	return out, nil
}

// UpdateTicketType edits a ticket type and revalidates it against the
// event's current sessions
func (s *ticketTypeService) UpdateTicketType(ctx context.Context, id string, req *dto.UpdateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error) {
	current, err := s.ticketTypeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, "UpdateTicketType", err, zap.String("ticket_type_id", id))
	}
	if current == nil {
		return nil, domain.ErrTicketTypeNotFound
	}

	var result *domain.TicketTypeWithAvailability
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, current.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		tt, err := s.ticketTypeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tt == nil {
			return domain.ErrTicketTypeNotFound
		}
		sessions, err := s.sessionRepo.ListByEvent(ctx, tt.EventID)
		if err != nil {
			return err
		}

		req.Apply(tt)
		if err := tt.Validate(sessions); err != nil {
			return err
		}
		tt.UpdatedAt = time.Now().UTC()
		if err := s.ticketTypeRepo.Update(ctx, tt); err != nil {
			return err
		}

		result, err = s.withAvailability(ctx, event, tt, sessions)
		return err
	})
	if err != nil {
		return nil, fail(ctx, "UpdateTicketType", err, zap.String("ticket_type_id", id))
	}
	return result, nil
}

// DeleteTicketType deletes a ticket type. Existing participations keep the
// sessions they claimed.
func (s *ticketTypeService) DeleteTicketType(ctx context.Context, id string) error {
	return fail(ctx, "DeleteTicketType", s.ticketTypeRepo.Delete(ctx, id), zap.String("ticket_type_id", id))
}

func (s *ticketTypeService) withAvailability(ctx context.Context, event *domain.Event, tt *domain.TicketType, sessions []*domain.Session) (*domain.TicketTypeWithAvailability, error) {
	active, err := s.participationRepo.CountActiveByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	a, err := domain.TicketTypeAvailabilityOf(tt, sessions, max(event.Capacity-active, 0))
	if err != nil {
		return nil, err
	}
	return &domain.TicketTypeWithAvailability{TicketType: tt, Availability: a}, nil
}
