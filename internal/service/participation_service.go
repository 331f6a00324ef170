package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/metrics"
	"github.com/prohmpiriya/community-events/internal/repository"
	"github.com/prohmpiriya/community-events/pkg/database"
	"github.com/prohmpiriya/community-events/pkg/logger"
	"github.com/prohmpiriya/community-events/pkg/retry"
	"github.com/prohmpiriya/community-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ParticipationRepositories groups the stores the participation service uses
type ParticipationRepositories struct {
	Tx             repository.TxManager
	Users          repository.UserRepository
	Events         repository.EventRepository
	Sessions       repository.SessionRepository
	TicketTypes    repository.TicketTypeRepository
	Participations repository.ParticipationRepository
	History        repository.HistoryRepository
}

// ParticipationServiceConfig contains configuration for the participation service
type ParticipationServiceConfig struct {
	// MaxRetries bounds how often a transaction that hit a serialization
	// failure or deadlock is re-run
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Clock defaults to time.Now
	Clock func() time.Time
}

// participationService implements ParticipationService
type participationService struct {
	repos     ParticipationRepositories
	publisher EventPublisher
	retrier   *retry.Retrier
	clock     func() time.Time
}

// NewParticipationService creates a new participation service
func NewParticipationService(repos ParticipationRepositories, publisher EventPublisher, cfg *ParticipationServiceConfig) ParticipationService {
	retryCfg := retry.DefaultConfig()
	retryCfg.RetryIf = database.IsTransient
	clock := time.Now
	if cfg != nil {
		if cfg.MaxRetries >= 0 {
			retryCfg.MaxRetries = cfg.MaxRetries
		}
		if cfg.InitialInterval > 0 {
			retryCfg.InitialInterval = cfg.InitialInterval
		}
		if cfg.MaxInterval > 0 {
			retryCfg.MaxInterval = cfg.MaxInterval
		}
		if cfg.Clock != nil {
			clock = cfg.Clock
		}
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &participationService{
		repos:     repos,
		publisher: publisher,
		retrier:   retry.New(retryCfg),
		clock:     clock,
	}
}

func (s *participationService) now() time.Time {
	return s.clock().UTC()
}

// inTx runs fn in a transaction, re-running the whole transaction when the
// database reports a serialization failure or deadlock
func (s *participationService) inTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	result := s.retrier.DoWithCallback(ctx, func(ctx context.Context) error {
		return s.repos.Tx.WithinTx(ctx, fn)
	}, func(attempt int, err error, next time.Duration) {
		metrics.RecordTxRetry(ctx, op)
		logger.Get().WarnContext(ctx, "retrying transaction",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	})
	if result.Err == nil {
		return nil
	}
	if errors.Is(result.Err, retry.ErrMaxRetriesExceeded) || errors.Is(result.Err, retry.ErrContextCanceled) {
		return fmt.Errorf("%w after %d attempts: %v", result.Err, result.Attempts, result.LastError)
	}
	return result.Err
}

// GetParticipationStatus returns the user's most recent participation for the event
func (s *participationService) GetParticipationStatus(ctx context.Context, eventID, userID string) (*domain.ParticipationView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.get_status")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID), attribute.String("user_id", userID))

	const op = "GetParticipationStatus"
	event, err := s.repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	if event == nil {
		return nil, fail(ctx, op, domain.ErrEventNotFound)
	}

	p, err := s.repos.Participations.GetLatestByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID), zap.String("user_id", userID))
	}
	if p == nil {
		return nil, nil
	}
	return s.view(p, event), nil
}

func (s *participationService) view(p *domain.Participation, event *domain.Event) *domain.ParticipationView {
	return &domain.ParticipationView{
		Participation: p,
		CanCancel:     canCancel(p, event, s.now()),
	}
}

func canCancel(p *domain.Participation, event *domain.Event, now time.Time) bool {
	if !p.CanBeCancelled() {
		return false
	}
	return event == nil || !event.HasConcluded(now)
}

// CreateRSVP registers a vetted member for a social event
func (s *participationService) CreateRSVP(ctx context.Context, eventID, userID string, req *dto.CreateRSVPRequest) (*domain.ParticipationView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.create_rsvp")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID), attribute.String("user_id", userID))

	if req == nil {
		req = &dto.CreateRSVPRequest{}
	}
	return s.create(ctx, "CreateRSVP", createParams{
		eventID: eventID,
		userID:  userID,
		pType:   domain.ParticipationTypeRSVP,
		notes:   req.Notes,
	})
}

// CreateTicketPurchase registers any active user for a class
func (s *participationService) CreateTicketPurchase(ctx context.Context, eventID, userID string, req *dto.CreateTicketPurchaseRequest) (*domain.ParticipationView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.create_ticket_purchase")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID), attribute.String("user_id", userID))

	if req == nil {
		req = &dto.CreateTicketPurchaseRequest{}
	}
	return s.create(ctx, "CreateTicketPurchase", createParams{
		eventID:         eventID,
		userID:          userID,
		pType:           domain.ParticipationTypeTicket,
		notes:           req.Notes,
		ticketTypeID:    req.TicketTypeID,
		paymentMethodID: req.PaymentMethodID,
	})
}

type createParams struct {
	eventID         string
	userID          string
	pType           domain.ParticipationType
	notes           string
	ticketTypeID    *string
	paymentMethodID string
}

func (s *participationService) create(ctx context.Context, op string, params createParams) (*domain.ParticipationView, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, op, time.Since(start).Seconds())
	}()

	var (
		event         *domain.Event
		participation *domain.Participation
	)

	err := s.inTx(ctx, op, func(ctx context.Context) error {
		now := s.now()

		user, err := s.repos.Users.GetByID(ctx, params.userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if !user.IsActive {
			return domain.ErrUserInactive
		}
		if params.pType == domain.ParticipationTypeRSVP && !user.IsVetted {
			return domain.ErrNotVetted
		}

		// Lock order: event, then sessions, then participation
		event, err = s.repos.Events.GetByIDForUpdate(ctx, params.eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		if !event.Accepts(params.pType) {
			return domain.ErrWrongEventType.
				WithMessage("%s participation is not available for %s events", params.pType, event.Type).
				WithDetails(map[string]interface{}{"event_type": string(event.Type)})
		}
		if !event.IsPublished {
			return domain.ErrEventNotPublished
		}
		if event.HasConcluded(now) {
			return domain.ErrEventConcluded
		}

		existing, err := s.repos.Participations.GetActiveByEventAndUser(ctx, event.ID, params.userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyParticipating.WithDetails(map[string]interface{}{"participation_id": existing.ID})
		}

		active, err := s.repos.Participations.CountActiveByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if active >= event.Capacity {
			return domain.ErrEventFull.WithDetails(map[string]interface{}{
				"capacity": event.Capacity,
				"active":   active,
			})
		}

		var claimed []string
		if params.ticketTypeID != nil {
			claimed, err = s.claimSessions(ctx, event, *params.ticketTypeID)
			if err != nil {
				return err
			}
		} else if params.pType == domain.ParticipationTypeTicket {
			if err := s.requireUntypedAllowed(ctx, event); err != nil {
				return err
			}
		}

		p := domain.NewParticipation(event.ID, params.userID, params.pType, now)
		p.Notes = params.notes
		p.PaymentMethodID = params.paymentMethodID
		p.TicketTypeID = params.ticketTypeID
		p.SessionIdentifiers = claimed

		if err := s.repos.Participations.Create(ctx, p); err != nil {
			return err
		}
		history := domain.NewHistory(p, domain.HistoryActionCreated, nil, params.userID, "", now)
		if err := s.repos.History.Append(ctx, history); err != nil {
			return err
		}

		participation = p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			metrics.RecordCapacityRejection(ctx, params.eventID, domain.AsError(err).Code)
		}
		return nil, fail(ctx, op, err,
			zap.String("event_id", params.eventID),
			zap.String("user_id", params.userID),
		)
	}

	metrics.RecordCreated(ctx, participation.EventID, string(participation.Type))
	s.publish(ctx, domain.ParticipationEventCreated, participation)

	logger.Get().InfoContext(ctx, "participation created",
		zap.String("participation_id", participation.ID),
		zap.String("event_id", participation.EventID),
		zap.String("user_id", participation.UserID),
		zap.String("type", string(participation.Type)),
	)
	return s.view(participation, event), nil
}

// requireUntypedAllowed refuses a ticket without a ticket type when the event
// sells active ticket types, since it would claim no session seat.
func (s *participationService) requireUntypedAllowed(ctx context.Context, event *domain.Event) error {
	ticketTypes, err := s.repos.TicketTypes.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	var active []string
	for _, tt := range ticketTypes {
		if tt.IsActive {
			active = append(active, tt.ID)
		}
	}
	if len(active) > 0 {
		return domain.ErrTicketTypeRequired.WithDetails(map[string]interface{}{
			"field":        "ticket_type_id",
			"ticket_types": active,
		})
	}
	return nil
}

// claimSessions locks the ticket type's sessions and takes one seat in each.
// It returns the identifiers claimed, in lock order.
func (s *participationService) claimSessions(ctx context.Context, event *domain.Event, ticketTypeID string) ([]string, error) {
	tt, err := s.repos.TicketTypes.GetByID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if tt == nil || tt.EventID != event.ID {
		return nil, domain.ErrTicketTypeNotFound
	}
	if !tt.IsActive {
		return nil, domain.ErrTicketTypeInactive
	}

	locked, err := s.repos.Sessions.ListByIdentifiersForUpdate(ctx, event.ID, tt.SessionIdentifiers)
	if err != nil {
		return nil, err
	}
	included, err := tt.IncludedSessions(locked)
	if err != nil {
		return nil, err
	}
	if len(included) == 0 {
		return nil, domain.NewValidationError("session_identifiers", "ticket type includes no sessions")
	}

	// Check every session before writing so the first full one is reported
	for _, session := range locked {
		if !session.HasAvailableCapacity(1) {
			return nil, domain.ErrSessionFull.
				WithMessage("session %s is at capacity", session.Identifier).
				WithDetails(map[string]interface{}{
					"session":    session.Identifier,
					"capacity":   session.Capacity,
					"registered": session.RegisteredCount,
				})
		}
	}

	claimed := make([]string, 0, len(locked))
	now := s.now()
	for _, session := range locked {
		if err := session.IncrementRegisteredCount(1); err != nil {
			return nil, err
		}
		session.UpdatedAt = now
		if err := s.repos.Sessions.Update(ctx, session); err != nil {
			return nil, err
		}
		claimed = append(claimed, session.Identifier)
	}
	return claimed, nil
}

// CancelParticipation cancels the user's active participation for the event
func (s *participationService) CancelParticipation(ctx context.Context, eventID, userID string, req *dto.CancelParticipationRequest) (*domain.ParticipationView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID), attribute.String("user_id", userID))

	const op = "CancelParticipation"
	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, op, time.Since(start).Seconds())
	}()

	reason := ""
	if req != nil {
		reason = req.Reason
	}

	var (
		event         *domain.Event
		participation *domain.Participation
	)

	err := s.inTx(ctx, op, func(ctx context.Context) error {
		now := s.now()

		var err error
		event, err = s.repos.Events.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		current, err := s.repos.Participations.GetActiveByEventAndUser(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if current == nil {
			latest, err := s.repos.Participations.GetLatestByEventAndUser(ctx, eventID, userID)
			if err != nil {
				return err
			}
			if latest == nil {
				return domain.ErrParticipationNotFound
			}
			return domain.ErrNotCancellable.WithDetails(map[string]interface{}{
				"participation_id": latest.ID,
				"status":           string(latest.Status),
			})
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		if event.HasConcluded(now) {
			return domain.ErrEventConcluded.WithMessage("cannot cancel after the event has concluded")
		}

		sessions, err := s.repos.Sessions.ListByIdentifiersForUpdate(ctx, eventID, current.SessionIdentifiers)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			if err := session.DecrementRegisteredCount(1); err != nil {
				return err
			}
			session.UpdatedAt = now
			if err := s.repos.Sessions.Update(ctx, session); err != nil {
				return err
			}
		}

		p, err := s.repos.Participations.GetByIDForUpdate(ctx, current.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrParticipationNotFound
		}

		old := p.Snapshot()
		if err := p.Cancel(reason, userID, now); err != nil {
			return err
		}
		if err := s.repos.Participations.Update(ctx, p); err != nil {
			return err
		}
		history := domain.NewHistory(p, domain.HistoryActionCancelled, old, userID, reason, now)
		if err := s.repos.History.Append(ctx, history); err != nil {
			return err
		}

		participation = p
		return nil
	})
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("event_id", eventID), zap.String("user_id", userID))
	}

	metrics.RecordCancelled(ctx, participation.EventID, string(participation.Type))
	s.publish(ctx, domain.ParticipationEventCancelled, participation)

	logger.Get().InfoContext(ctx, "participation cancelled",
		zap.String("participation_id", participation.ID),
		zap.String("event_id", participation.EventID),
		zap.String("user_id", participation.UserID),
	)
	return s.view(participation, event), nil
}

// publish is best-effort: the participation is already committed
func (s *participationService) publish(ctx context.Context, eventType domain.ParticipationEventType, p *domain.Participation) {
	var err error
	switch eventType {
	case domain.ParticipationEventCreated:
		err = s.publisher.PublishParticipationCreated(ctx, p)
	case domain.ParticipationEventCancelled:
		err = s.publisher.PublishParticipationCancelled(ctx, p)
	}
	if err != nil {
		metrics.RecordPublishFailure(ctx, string(eventType))
		logger.Get().WarnContext(ctx, "failed to publish participation event",
			zap.String("event_type", string(eventType)),
			zap.String("participation_id", p.ID),
			zap.Error(err),
		)
	}
}

// GetUserParticipations lists a user's participations newest first
func (s *participationService) GetUserParticipations(ctx context.Context, userID string, filter *dto.ParticipationListFilter) ([]*domain.UserParticipationSummary, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.list_by_user")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	const op = "GetUserParticipations"
	if filter == nil {
		filter = &dto.ParticipationListFilter{}
	}
	filter.SetDefaults()

	participations, total, err := s.repos.Participations.ListByUser(ctx, userID, &repository.ParticipationFilter{
		Status: filter.Status,
		Type:   filter.Type,
	}, filter.Limit(), filter.Offset())
	if err != nil {
		return nil, 0, fail(ctx, op, err, zap.String("user_id", userID))
	}

	eventIDs := make([]string, 0, len(participations))
	seen := make(map[string]bool, len(participations))
	for _, p := range participations {
		if !seen[p.EventID] {
			seen[p.EventID] = true
			eventIDs = append(eventIDs, p.EventID)
		}
	}
	events, err := s.repos.Events.GetByIDs(ctx, eventIDs)
	if err != nil {
		return nil, 0, fail(ctx, op, err, zap.String("user_id", userID))
	}

	now := s.now()
	summaries := make([]*domain.UserParticipationSummary, 0, len(participations))
	for _, p := range participations {
		event := events[p.EventID]
		summaries = append(summaries, &domain.UserParticipationSummary{
			Participation: p,
			Event:         event,
			CanCancel:     event != nil && canCancel(p, event, now),
		})
	}
	return summaries, total, nil
}

// GetEventParticipations lists an event's participations newest first
func (s *participationService) GetEventParticipations(ctx context.Context, eventID string, filter *dto.ParticipationListFilter) ([]*domain.EventParticipationSummary, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.list_by_event")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	const op = "GetEventParticipations"
	if filter == nil {
		filter = &dto.ParticipationListFilter{}
	}
	filter.SetDefaults()

	event, err := s.repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, fail(ctx, op, err, zap.String("event_id", eventID))
	}
	if event == nil {
		return nil, 0, fail(ctx, op, domain.ErrEventNotFound)
	}

	participations, total, err := s.repos.Participations.ListByEvent(ctx, eventID, &repository.ParticipationFilter{
		Status: filter.Status,
		Type:   filter.Type,
	}, filter.Limit(), filter.Offset())
	if err != nil {
		return nil, 0, fail(ctx, op, err, zap.String("event_id", eventID))
	}

	userIDs := make([]string, 0, len(participations))
	for _, p := range participations {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := s.repos.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, 0, fail(ctx, op, err, zap.String("event_id", eventID))
	}

	summaries := make([]*domain.EventParticipationSummary, 0, len(participations))
	for _, p := range participations {
		summaries = append(summaries, &domain.EventParticipationSummary{
			Participation: p,
			User:          users[p.UserID],
		})
	}
	return summaries, total, nil
}

// GetParticipationHistory returns the audit log of a participation oldest first
func (s *participationService) GetParticipationHistory(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participation.history")
	defer span.End()
	span.SetAttributes(attribute.String("participation_id", participationID))

	const op = "GetParticipationHistory"
	p, err := s.repos.Participations.GetByID(ctx, participationID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("participation_id", participationID))
	}
	if p == nil {
		return nil, fail(ctx, op, domain.ErrParticipationNotFound)
	}

	history, err := s.repos.History.ListByParticipation(ctx, participationID)
	if err != nil {
		return nil, fail(ctx, op, err, zap.String("participation_id", participationID))
	}
	return history, nil
}
