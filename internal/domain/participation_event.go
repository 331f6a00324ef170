package domain

import "time"

// ParticipationEventType names a participation lifecycle message
type ParticipationEventType string

const (
	ParticipationEventCreated   ParticipationEventType = "participation.created"
	ParticipationEventCancelled ParticipationEventType = "participation.cancelled"
)

// ParticipationEvent is the message published after a participation commits
type ParticipationEvent struct {
	EventID         string                 `json:"event_id"`
	EventType       ParticipationEventType `json:"event_type"`
	OccurredAt      time.Time              `json:"occurred_at"`
	ParticipationID string                 `json:"participation_id"`
	CommunityEvent  string                 `json:"community_event_id"`
	UserID          string                 `json:"user_id"`
	Type            ParticipationType      `json:"participation_type"`
	Status          ParticipationStatus    `json:"status"`
	TicketTypeID    *string                `json:"ticket_type_id,omitempty"`
	Sessions        []string               `json:"session_identifiers,omitempty"`
	Reason          string                 `json:"reason,omitempty"`
}

// NewParticipationEvent builds the message for p
func NewParticipationEvent(eventType ParticipationEventType, p *Participation, messageID string, now time.Time) *ParticipationEvent {
	return &ParticipationEvent{
		EventID:         messageID,
		EventType:       eventType,
		OccurredAt:      now,
		ParticipationID: p.ID,
		CommunityEvent:  p.EventID,
		UserID:          p.UserID,
		Type:            p.Type,
		Status:          p.Status,
		TicketTypeID:    p.TicketTypeID,
		Sessions:        p.SessionIdentifiers,
		Reason:          p.CancellationReason,
	}
}

// Key partitions messages by community event so they stay ordered per event
func (e *ParticipationEvent) Key() string {
	return e.CommunityEvent
}
