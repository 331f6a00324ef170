package service

import (
	"context"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/repository"
	"github.com/prohmpiriya/community-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// availabilityService implements AvailabilityService. Every call reads the
// current rows; nothing is cached. Concurrent calls for the same event share
// one in-flight computation.
type availabilityService struct {
	eventRepo         repository.EventRepository
	sessionRepo       repository.SessionRepository
	ticketTypeRepo    repository.TicketTypeRepository
	participationRepo repository.ParticipationRepository
	sfGroup           singleflight.Group
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	eventRepo repository.EventRepository,
	sessionRepo repository.SessionRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	participationRepo repository.ParticipationRepository,
) AvailabilityService {
	return &availabilityService{
		eventRepo:         eventRepo,
		sessionRepo:       sessionRepo,
		ticketTypeRepo:    ticketTypeRepo,
		participationRepo: participationRepo,
	}
}

// GetEventAvailability computes event, session and ticket type availability
func (s *availabilityService) GetEventAvailability(ctx context.Context, eventID string) (*domain.EventAvailability, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.get")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	// The shared computation outlives any single caller; each caller still
	// returns as soon as its own context ends.
	ch := s.sfGroup.DoChan(eventID, func() (interface{}, error) {
		return s.calculate(context.WithoutCancel(ctx), eventID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.EventAvailability), nil
	}
}

func (s *availabilityService) calculate(ctx context.Context, eventID string) (*domain.EventAvailability, error) {
	const op = "GetEventAvailability"
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	active, err := s.participationRepo.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	sessions, err := s.sessionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	ticketTypes, err := s.ticketTypeRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}

	availability, err := domain.CalculateAvailability(event, active, sessions, ticketTypes)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	return availability, nil
}
