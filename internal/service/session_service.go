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

// sessionService implements SessionService
type sessionService struct {
	tx                repository.TxManager
	eventRepo         repository.EventRepository
	sessionRepo       repository.SessionRepository
	ticketTypeRepo    repository.TicketTypeRepository
	participationRepo repository.ParticipationRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(
	tx repository.TxManager,
	eventRepo repository.EventRepository,
	sessionRepo repository.SessionRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	participationRepo repository.ParticipationRepository,
) SessionService {
	return &sessionService{
		tx:                tx,
		eventRepo:         eventRepo,
		sessionRepo:       sessionRepo,
		ticketTypeRepo:    ticketTypeRepo,
		participationRepo: participationRepo,
	}
}

// CreateSession adds a session to an event. The identifier must be unique
// within the event and the session may not overlap its siblings.
func (s *sessionService) CreateSession(ctx context.Context, eventID string, req *dto.CreateSessionRequest) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.create")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	const op = "CreateSession"
	details, err := req.Details()
	if err != nil {
		return nil, fail(ctx, op, err)
	}

	var created *domain.Session
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		siblings, err := s.sessionRepo.ListByEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		session, err := domain.NewSession(eventID, req.Identifier, details, time.Now().UTC())
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.Identifier == session.Identifier {
				return domain.ErrDuplicateSessionIdentifier.WithDetails(map[string]interface{}{"identifier": session.Identifier})
			}
		}
		if err := session.CheckOverlap(siblings); err != nil {
			return err
		}

		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return err
		}
		created = session
		return nil
	})
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	return created, nil
}

// GetSession retrieves a session by ID
func (s *sessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, "GetSession", err, zap.String("session_id", id))
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ListSessions lists the sessions of an event in identifier order
func (s *sessionService) ListSessions(ctx context.Context, eventID string) ([]*domain.Session, error) {
	const op = "ListSessions"
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	sessions, err := s.sessionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	return sessions, nil
}

// UpdateSession edits a session. The result carries the recomputed
// availability of every ticket type that includes the session.
func (s *sessionService) UpdateSession(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*domain.SessionUpdate, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.update")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", id))

	const op = "UpdateSession"
	current, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("session_id", id))
	}
	if current == nil {
		return nil, domain.ErrSessionNotFound
	}

	var result *domain.SessionUpdate
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, current.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		siblings, err := s.sessionRepo.ListByEventForUpdate(ctx, current.EventID)
		if err != nil {
			return err
		}
		session := findSession(siblings, id)
		if session == nil {
			return domain.ErrSessionNotFound
		}

		details, err := req.Apply(session)
		if err != nil {
			return err
		}
		if err := session.UpdateDetails(details, time.Now().UTC()); err != nil {
			return err
		}
		if err := session.CheckOverlap(siblings); err != nil {
			return err
		}
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		dependents, err := s.dependents(ctx, event, session.Identifier, siblings)
		if err != nil {
			return err
		}
		result = &domain.SessionUpdate{Session: session, Dependents: dependents}
		return nil
	})
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("session_id", id))
	}
	return result, nil
}

// dependents recomputes availability for ticket types that include identifier
func (s *sessionService) dependents(ctx context.Context, event *domain.Event, identifier string, sessions []*domain.Session) ([]domain.TicketTypeAvailability, error) {
	ticketTypes, err := s.ticketTypeRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	active, err := s.participationRepo.CountActiveByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	remaining := max(event.Capacity-active, 0)

	out := make([]domain.TicketTypeAvailability, 0)
	for _, tt := range ticketTypes {
		if !tt.References(identifier) {
			continue
		}
		a, err := domain.TicketTypeAvailabilityOf(tt, sessions, remaining)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// DeleteSession deletes a session that holds no registrations and is not
// part of any ticket type
func (s *sessionService) DeleteSession(ctx context.Context, id string) error {
	const op = "DeleteSession"
	current, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return fail(ctx, op, err, zap.String("session_id", id))
	}
	if current == nil {
		return domain.ErrSessionNotFound
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.GetByIDForUpdate(ctx, current.EventID); err != nil {
			return err
		}
		siblings, err := s.sessionRepo.ListByEventForUpdate(ctx, current.EventID)
		if err != nil {
			return err
		}
		session := findSession(siblings, id)
		if session == nil {
			return domain.ErrSessionNotFound
		}
		if session.RegisteredCount > 0 {
			return domain.ErrSessionInUse.WithDetails(map[string]interface{}{
				"session":    session.Identifier,
				"registered": session.RegisteredCount,
			})
		}

		ticketTypes, err := s.ticketTypeRepo.ListByEvent(ctx, current.EventID)
		if err != nil {
			return err
		}
		var referencing []string
		for _, tt := range ticketTypes {
			if tt.References(session.Identifier) {
				referencing = append(referencing, tt.Name)
			}
		}
		if len(referencing) > 0 {
			return domain.ErrSessionInUse.WithDetails(map[string]interface{}{
				"session":      session.Identifier,
				"ticket_types": referencing,
			})
		}
		return s.sessionRepo.Delete(ctx, id)
	})
	return fail(ctx, op, err, zap.String("session_id", id))
}

func findSession(sessions []*domain.Session, id string) *domain.Session {
	for _, s := range sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}
