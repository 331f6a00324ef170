package service

import (
	"context"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
)

// EventService defines the interface for event business logic
type EventService interface {
	// CreateEvent creates a new unpublished event
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	// ListEvents lists events with filters and pagination
	ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error)
	// UpdateEvent updates an event
	UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	// PublishEvent publishes an event
	PublishEvent(ctx context.Context, id string) (*domain.Event, error)
	// DeleteEvent deletes an event with its sessions and ticket types
	DeleteEvent(ctx context.Context, id string) error
}

// SessionService defines the interface for event session business logic
type SessionService interface {
	// CreateSession adds a session to an event
	CreateSession(ctx context.Context, eventID string, req *dto.CreateSessionRequest) (*domain.Session, error)
	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	// ListSessions lists the sessions of an event
	ListSessions(ctx context.Context, eventID string) ([]*domain.Session, error)
	// UpdateSession edits a session and recomputes dependent ticket types
	UpdateSession(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*domain.SessionUpdate, error)
	// DeleteSession deletes an unused session
	DeleteSession(ctx context.Context, id string) error
}

// TicketTypeService defines the interface for ticket type business logic
type TicketTypeService interface {
	// CreateTicketType adds a ticket type to an event
	CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error)
	// GetTicketType retrieves a ticket type with its availability
	GetTicketType(ctx context.Context, id string) (*domain.TicketTypeWithAvailability, error)
	// ListTicketTypes lists the ticket types of an event with availability
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketTypeWithAvailability, error)
	// UpdateTicketType edits a ticket type
	UpdateTicketType(ctx context.Context, id string, req *dto.UpdateTicketTypeRequest) (*domain.TicketTypeWithAvailability, error)
	// DeleteTicketType deletes a ticket type
	DeleteTicketType(ctx context.Context, id string) error
}

// AvailabilityService derives capacity views from current state
type AvailabilityService interface {
	// GetEventAvailability computes event, session and ticket type availability
	GetEventAvailability(ctx context.Context, eventID string) (*domain.EventAvailability, error)
}

// ParticipationService defines the interface for participation business logic
type ParticipationService interface {
	// GetParticipationStatus returns the user's most recent participation, or nil
	GetParticipationStatus(ctx context.Context, eventID, userID string) (*domain.ParticipationView, error)
	// CreateRSVP registers a vetted user for a social event
	CreateRSVP(ctx context.Context, eventID, userID string, req *dto.CreateRSVPRequest) (*domain.ParticipationView, error)
	// CreateTicketPurchase registers a user for a class, optionally against a ticket type
	CreateTicketPurchase(ctx context.Context, eventID, userID string, req *dto.CreateTicketPurchaseRequest) (*domain.ParticipationView, error)
	// CancelParticipation cancels the user's active participation
	CancelParticipation(ctx context.Context, eventID, userID string, req *dto.CancelParticipationRequest) (*domain.ParticipationView, error)
	// GetUserParticipations lists a user's participations newest first
	GetUserParticipations(ctx context.Context, userID string, filter *dto.ParticipationListFilter) ([]*domain.UserParticipationSummary, int, error)
	// GetEventParticipations lists an event's participations newest first
	GetEventParticipations(ctx context.Context, eventID string, filter *dto.ParticipationListFilter) ([]*domain.EventParticipationSummary, int, error)
	// GetParticipationHistory returns the audit log of a participation
	GetParticipationHistory(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error)
}
