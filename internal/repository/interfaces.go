package repository

import (
	"context"

	"github.com/prohmpiriya/community-events/internal/domain"
)

// TxManager runs a function inside one database transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TxManager interface {
	// WithinTx commits when fn returns nil and rolls back otherwise
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDs retrieves users keyed by ID; unknown ids are absent from the map
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create creates a new event
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetByIDForUpdate retrieves an event by ID and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error)
	// GetByIDs retrieves events keyed by ID; unknown ids are absent from the map
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Event, error)
	// Update updates an event
	Update(ctx context.Context, event *domain.Event) error
	// Delete deletes an event and, by cascade, its sessions and ticket types
	Delete(ctx context.Context, id string) error
	// List lists events with filters and pagination
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)
}

// EventFilter contains filter options for listing events
type EventFilter struct {
	Type          string
	PublishedOnly bool
	UpcomingOnly  bool
}

// SessionRepository defines the interface for event session data access
type SessionRepository interface {
	// Create creates a new session
	Create(ctx context.Context, session *domain.Session) error
	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ListByEvent lists the sessions of an event in identifier order
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Session, error)
	// ListByEventForUpdate lists and locks all sessions of an event in identifier order
	ListByEventForUpdate(ctx context.Context, eventID string) ([]*domain.Session, error)
	// ListByIdentifiersForUpdate locks the named sessions of an event in identifier order
	ListByIdentifiersForUpdate(ctx context.Context, eventID string, identifiers []string) ([]*domain.Session, error)
	// Update updates a session including its registered count
	Update(ctx context.Context, session *domain.Session) error
	// Delete deletes a session by ID
	Delete(ctx context.Context, id string) error
}

// TicketTypeRepository defines the interface for ticket type data access
type TicketTypeRepository interface {
	// Create creates a new ticket type
	Create(ctx context.Context, ticketType *domain.TicketType) error
	// GetByID retrieves a ticket type by ID
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	// ListByEvent lists the ticket types of an event by sort order
	ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	// Update updates a ticket type
	Update(ctx context.Context, ticketType *domain.TicketType) error
	// Delete deletes a ticket type by ID
	Delete(ctx context.Context, id string) error
}

// ParticipationRepository defines the interface for participation data access.
// Participations are never deleted.
type ParticipationRepository interface {
	// Create inserts a participation. A second active row for the same
	// event and user fails with domain.ErrAlreadyParticipating.
	Create(ctx context.Context, p *domain.Participation) error
	// Update persists status and audit fields
	Update(ctx context.Context, p *domain.Participation) error
	// GetByID retrieves a participation by ID
	GetByID(ctx context.Context, id string) (*domain.Participation, error)
	// GetByIDForUpdate retrieves and locks a participation
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Participation, error)
	// GetActiveByEventAndUser returns the active participation, if any
	GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error)
	// GetLatestByEventAndUser returns the most recent participation in any status
	GetLatestByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participation, error)
	// CountActiveByEvent counts active participations of an event
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	// ListByUser lists a user's participations newest first
	ListByUser(ctx context.Context, userID string, filter *ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error)
	// ListByEvent lists an event's participations newest first
	ListByEvent(ctx context.Context, eventID string, filter *ParticipationFilter, limit, offset int) ([]*domain.Participation, int, error)
}

// ParticipationFilter contains filter options for listing participations
type ParticipationFilter struct {
	Status string
	Type   string
}

// HistoryRepository is the append-only participation audit log
type HistoryRepository interface {
	// Append writes one audit record
	Append(ctx context.Context, h *domain.ParticipationHistory) error
	// ListByParticipation lists the audit records of a participation oldest first
	ListByParticipation(ctx context.Context, participationID string) ([]*domain.ParticipationHistory, error)
}
