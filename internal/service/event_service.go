package service

import (
	"context"
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/repository"
	"github.com/prohmpiriya/community-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// eventService implements EventService
type eventService struct {
	tx                repository.TxManager
	eventRepo         repository.EventRepository
	participationRepo repository.ParticipationRepository
}

// NewEventService creates a new EventService
func NewEventService(tx repository.TxManager, eventRepo repository.EventRepository, participationRepo repository.ParticipationRepository) EventService {
	return &eventService{
		tx:                tx,
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
	}
}

// CreateEvent creates a new unpublished event
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	const op = "CreateEvent"
	if valid, msg := req.Validate(); !valid {
		return nil, fail(ctx, op, validationError(msg))
	}

	event, err := domain.NewEvent(req.Title, req.Description, req.Location, domain.EventType(req.Type),
		req.Capacity, req.StartDate, req.EndDate, time.Now().UTC())
	if err != nil {
		return nil, fail(ctx, op, err)
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", event.ID))
	}
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, "GetEvent", err, zap.String("event_id", id))
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

// ListEvents lists events with filters and pagination
func (s *eventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	if filter == nil {
		filter = &dto.EventListFilter{}
	}
	filter.SetDefaults()

	events, total, err := s.eventRepo.List(ctx, &repository.EventFilter{
		Type:          filter.Type,
		PublishedOnly: filter.PublishedOnly,
		UpcomingOnly:  filter.Upcoming,
	}, filter.Limit(), filter.Offset())
	if err != nil {
		return nil, 0, fail(ctx, "ListEvents", err)
	}
	return events, total, nil
}

// UpdateEvent updates an event. Capacity may not drop below the number of
// active participations.
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", id))

	const op = "UpdateEvent"
	if valid, msg := req.Validate(); !valid {
		return nil, fail(ctx, op, validationError(msg))
	}

	var updated *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if req.Title != nil {
			event.Title = *req.Title
		}
		if req.Description != nil {
			event.Description = *req.Description
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		currentType := event.Type
		typeChanged := req.Type != nil && domain.EventType(*req.Type) != currentType
		if req.Type != nil {
			event.Type = domain.EventType(*req.Type)
		}
		if req.Capacity != nil {
			event.Capacity = *req.Capacity
		}
		if req.StartDate != nil {
			event.StartDate = req.StartDate.UTC()
		}
		if req.EndDate != nil {
			event.EndDate = req.EndDate.UTC()
		}
		if err := event.Validate(); err != nil {
			return err
		}

		if req.Capacity != nil || typeChanged {
			active, err := s.participationRepo.CountActiveByEvent(ctx, id)
			if err != nil {
				return err
			}
			if typeChanged && active > 0 {
				return domain.ErrEventTypeLocked.WithDetails(map[string]interface{}{
					"type":   currentType,
					"active": active,
				})
			}
			if event.Capacity < active {
				return domain.ErrCapacityBelowRegistered.WithDetails(map[string]interface{}{
					"capacity": event.Capacity,
					"active":   active,
				})
			}
		}

		event.UpdatedAt = time.Now().UTC()
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", id))
	}
	return updated, nil
}

// PublishEvent makes an event open for participation
func (s *eventService) PublishEvent(ctx context.Context, id string) (*domain.Event, error) {
	var published *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		if !event.IsPublished {
			event.IsPublished = true
			event.UpdatedAt = time.Now().UTC()
			if err := s.eventRepo.Update(ctx, event); err != nil {
				return err
			}
		}
		published = event
		return nil
	})
	if err != nil {
		return nil, fail(ctx, "PublishEvent", err, zap.String("event_id", id))
	}
	return published, nil
}

// DeleteEvent deletes an event that has no active participations
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		active, err := s.participationRepo.CountActiveByEvent(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrEventHasParticipants.WithDetails(map[string]interface{}{"active": active})
		}
		return s.eventRepo.Delete(ctx, id)
	})
	return fail(ctx, "DeleteEvent", err, zap.String("event_id", id))
}
