package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var sessionIdentifierPattern = regexp.MustCompile(`^S\d+$`)

// Session is a timed sub-unit of an event with its own capacity.
// StartTime and EndTime are offsets from midnight of Date.
type Session struct {
	ID              string
	EventID         string
	Identifier      string
	Name            string
	Date            time.Time
	StartTime       time.Duration
	EndTime         time.Duration
	Capacity        int
	RegisteredCount int
	IsRequired      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SessionDetails are the editable fields of a session
type SessionDetails struct {
	Name       string
	Date       time.Time
	StartTime  time.Duration
	EndTime    time.Duration
	Capacity   int
	IsRequired bool
}

// NewSession validates and creates a session with no registrations
func NewSession(eventID, identifier string, details SessionDetails, now time.Time) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if !sessionIdentifierPattern.MatchString(identifier) {
		return nil, NewValidationError("identifier", `must be "S" followed by digits`)
	}
	if err := details.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ID:         uuid.NewString(),
		EventID:    eventID,
		Identifier: identifier,
		CreatedAt:  now,
	}
	s.apply(details, now)
	return s, nil
}

func (d SessionDetails) validate() error {
	if d.Capacity <= 0 {
		return NewValidationError("capacity", "must be greater than zero")
	}
	if d.StartTime < 0 || d.EndTime > 24*time.Hour {
		return NewValidationError("start_time", "must be within the day")
	}
	if d.StartTime >= d.EndTime {
		return NewValidationError("end_time", "must be after start_time")
	}
	if d.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	return nil
}

func (s *Session) apply(d SessionDetails, now time.Time) {
	s.Name = strings.TrimSpace(d.Name)
	if s.Name == "" {
		s.Name = s.Identifier
	}
	s.Date = DateOnly(d.Date)
	s.StartTime = d.StartTime
	s.EndTime = d.EndTime
	s.Capacity = d.Capacity
	s.IsRequired = d.IsRequired
	s.UpdatedAt = now
}

// Available returns the free seats
func (s *Session) Available() int {
	return s.Capacity - s.RegisteredCount
}

// HasAvailableCapacity reports whether qty more registrations fit
func (s *Session) HasAvailableCapacity(qty int) bool {
	if qty < 1 {
		qty = 1
	}
	return s.Available() >= qty
}

// IncrementRegisteredCount claims qty seats
func (s *Session) IncrementRegisteredCount(qty int) error {
	if qty < 1 {
		return NewValidationError("quantity", "must be at least 1")
	}
	if !s.HasAvailableCapacity(qty) {
		return ErrSessionFull.
			WithMessage("session %s is at capacity", s.Identifier).
			WithDetails(map[string]interface{}{
				"session":    s.Identifier,
				"capacity":   s.Capacity,
				"registered": s.RegisteredCount,
			})
	}
	s.RegisteredCount += qty
	return nil
}

// DecrementRegisteredCount releases qty seats
func (s *Session) DecrementRegisteredCount(qty int) error {
	if qty < 1 {
		return NewValidationError("quantity", "must be at least 1")
	}
	if s.RegisteredCount-qty < 0 {
		return ErrRegisteredCountNegative.WithDetails(map[string]interface{}{
			"session":    s.Identifier,
			"registered": s.RegisteredCount,
		})
	}
	s.RegisteredCount -= qty
	return nil
}

// UpdateDetails edits the session; capacity may not drop below registrations
func (s *Session) UpdateDetails(d SessionDetails, now time.Time) error {
	if err := d.validate(); err != nil {
		return err
	}
	if d.Capacity < s.RegisteredCount {
		return ErrCapacityBelowRegistered.WithDetails(map[string]interface{}{
			"session":    s.Identifier,
			"registered": s.RegisteredCount,
			"capacity":   d.Capacity,
		})
	}
	s.apply(d, now)
	return nil
}

// OverlapsWith reports whether both sessions fall on the same date with
// intersecting half-open time ranges. A session never overlaps itself.
func (s *Session) OverlapsWith(other *Session) bool {
	if s.ID != "" && s.ID == other.ID {
		return false
	}
	if !DateOnly(s.Date).Equal(DateOnly(other.Date)) {
		return false
	}
	return s.StartTime < other.EndTime && s.EndTime > other.StartTime
}

// CheckOverlap returns ErrSessionOverlap naming the first sibling s collides with
func (s *Session) CheckOverlap(siblings []*Session) error {
	for _, o := range siblings {
		if s.OverlapsWith(o) {
			return ErrSessionOverlap.
				WithMessage("session %s overlaps session %s", s.Identifier, o.Identifier).
				WithDetails(map[string]interface{}{"session": s.Identifier, "conflicts_with": o.Identifier})
		}
	}
	return nil
}

// DateOnly truncates t to its UTC calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatTimeOfDay renders an offset from midnight as HH:MM
func FormatTimeOfDay(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS into an offset from midnight
func ParseTimeOfDay(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// SessionIdentifierLess orders S2 before S10
func SessionIdentifierLess(a, b string) bool {
	na, errA := strconv.Atoi(strings.TrimPrefix(a, "S"))
	nb, errB := strconv.Atoi(strings.TrimPrefix(b, "S"))
	if errA != nil || errB != nil || na == nb {
		return a < b
	}
	return na < nb
}
