package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType decides which participation type an event accepts
type EventType string

const (
	EventTypeClass      EventType = "class"
	EventTypeSocial     EventType = "social"
	EventTypeMemberOnly EventType = "member_only"
)

// IsValid checks if the event type is known
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeClass, EventTypeSocial, EventTypeMemberOnly:
		return true
	}
	return false
}

const (
	MinEventDuration = 30 * time.Minute
	MaxEventDuration = 24 * time.Hour
	MinEventCapacity = 1
	MaxEventCapacity = 1000
)

// Event is the aggregate root owning sessions and ticket types
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Type        EventType
	Capacity    int
	IsPublished bool
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent creates an unpublished event and validates it
func NewEvent(title, description, location string, eventType EventType, capacity int, start, end time.Time, now time.Time) (*Event, error) {
	e := &Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Location:    location,
		Type:        eventType,
		Capacity:    capacity,
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate enforces the event invariants
func (e *Event) Validate() error {
	if e.Title == "" {
		return NewValidationError("title", "is required")
	}
	if !e.Type.IsValid() {
		return NewValidationError("type", "must be one of class, social, member_only")
	}
	if e.Capacity < MinEventCapacity || e.Capacity > MaxEventCapacity {
		return NewValidationError("capacity", "must be between 1 and 1000")
	}
	if !e.EndDate.After(e.StartDate) {
		return NewValidationError("end_date", "must be after start_date")
	}
	d := e.EndDate.Sub(e.StartDate)
	if d < MinEventDuration || d > MaxEventDuration {
		return NewValidationError("end_date", "event must last between 30 minutes and 24 hours")
	}
	return nil
}

// HasConcluded reports whether the event end is at or before now
func (e *Event) HasConcluded(now time.Time) bool {
	return !now.Before(e.EndDate)
}

// Accepts reports whether the event type admits the participation type.
// RSVPs are for social events and tickets for classes.
func (e *Event) Accepts(t ParticipationType) bool {
	switch t {
	case ParticipationTypeRSVP:
		return e.Type == EventTypeSocial
	case ParticipationTypeTicket:
		return e.Type == EventTypeClass
	}
	return false
}
