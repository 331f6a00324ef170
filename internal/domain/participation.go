package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ParticipationType discriminates RSVPs from ticket purchases
type ParticipationType string

const (
	ParticipationTypeRSVP   ParticipationType = "rsvp"
	ParticipationTypeTicket ParticipationType = "ticket"
)

// ParticipationStatus is the lifecycle state. Cancelled is terminal.
type ParticipationStatus string

const (
	ParticipationStatusActive    ParticipationStatus = "active"
	ParticipationStatusCancelled ParticipationStatus = "cancelled"
)

// Participation is a user's claim against an event
type Participation struct {
	ID                 string
	EventID            string
	UserID             string
	Type               ParticipationType
	Status             ParticipationStatus
	TicketTypeID       *string
	// SessionIdentifiers are the sessions whose seats this participation holds
	SessionIdentifiers []string
	PaymentMethodID    string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time
	CancellationReason string
	CreatedBy          string
	UpdatedBy          string
}

// NewParticipation creates an active participation
func NewParticipation(eventID, userID string, t ParticipationType, now time.Time) *Participation {
	return &Participation{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Type:      t,
		Status:    ParticipationStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
}

// CanBeCancelled reports whether the participation is still active
func (p *Participation) CanBeCancelled() bool {
	return p.Status == ParticipationStatusActive
}

// Cancel moves an active participation to Cancelled
func (p *Participation) Cancel(reason, cancelledBy string, now time.Time) error {
	if !p.CanBeCancelled() {
		return ErrNotCancellable.WithDetails(map[string]interface{}{"status": string(p.Status)})
	}
	p.Status = ParticipationStatusCancelled
	p.CancelledAt = &now
	p.CancellationReason = reason
	p.UpdatedAt = now
	p.UpdatedBy = cancelledBy
	return nil
}

// participationSnapshot is the audited view of a participation
type participationSnapshot struct {
	ID                 string              `json:"id"`
	EventID            string              `json:"event_id"`
	UserID             string              `json:"user_id"`
	Type               ParticipationType   `json:"type"`
	Status             ParticipationStatus `json:"status"`
	TicketTypeID       *string             `json:"ticket_type_id,omitempty"`
	SessionIdentifiers []string            `json:"session_identifiers,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
}

// Snapshot serializes the audited fields
func (p *Participation) Snapshot() json.RawMessage {
	data, _ := json.Marshal(participationSnapshot{
		ID:                 p.ID,
		EventID:            p.EventID,
		UserID:             p.UserID,
		Type:               p.Type,
		Status:             p.Status,
		TicketTypeID:       p.TicketTypeID,
		SessionIdentifiers: p.SessionIdentifiers,
		Notes:              p.Notes,
		CreatedAt:          p.CreatedAt,
		CancelledAt:        p.CancelledAt,
		CancellationReason: p.CancellationReason,
	})
	return data
}

// HistoryAction labels an audit entry
type HistoryAction string

const (
	HistoryActionCreated   HistoryAction = "Created"
	HistoryActionCancelled HistoryAction = "Cancelled"
)

// ParticipationHistory is an append-only audit record
type ParticipationHistory struct {
	ID              string
	ParticipationID string
	Action          HistoryAction
	OldValue        json.RawMessage
	NewValue        json.RawMessage
	ChangedBy       string
	ChangeReason    string
	CreatedAt       time.Time
}

// NewHistory records a transition of p. old is nil for creations.
func NewHistory(p *Participation, action HistoryAction, old json.RawMessage, changedBy, reason string, now time.Time) *ParticipationHistory {
	return &ParticipationHistory{
		ID:              uuid.NewString(),
		ParticipationID: p.ID,
		Action:          action,
		OldValue:        old,
		NewValue:        p.Snapshot(),
		ChangedBy:       changedBy,
		ChangeReason:    reason,
		CreatedAt:       now,
	}
}
