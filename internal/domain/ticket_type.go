package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PricingMode distinguishes a fixed price from a sliding scale
type PricingMode string

const (
	PricingFixed   PricingMode = "fixed"
	PricingSliding PricingMode = "sliding_scale"
)

// TicketType is a bundle of sessions sold together
type TicketType struct {
	ID                 string
	EventID            string
	Name               string
	Description        string
	Pricing            PricingMode
	Price              float64
	MinPrice           float64
	SuggestedPrice     float64
	MaxPrice           float64
	SessionIdentifiers []string
	IsActive           bool
	SortOrder          int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewTicketType creates an active ticket type and validates it against the
// event's sessions
func NewTicketType(t TicketType, sessions []*Session, now time.Time) (*TicketType, error) {
	t.ID = uuid.NewString()
	t.IsActive = true
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(sessions); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks pricing and that every included session exists on the event
func (t *TicketType) Validate(sessions []*Session) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return NewValidationError("name", "is required")
	}
	if t.Pricing == "" {
		t.Pricing = PricingFixed
	}

	switch t.Pricing {
	case PricingFixed:
		if t.Price < 0 {
			return NewValidationError("price", "must not be negative")
		}
	case PricingSliding:
		if t.MinPrice < 0 {
			return NewValidationError("min_price", "must not be negative")
		}
		if t.MinPrice > t.SuggestedPrice || t.SuggestedPrice > t.MaxPrice {
			return NewValidationError("suggested_price", "sliding scale requires min <= suggested <= max")
		}
	default:
		return NewValidationError("pricing", "must be fixed or sliding_scale")
	}

	if len(t.SessionIdentifiers) == 0 {
		return NewValidationError("session_identifiers", "at least one session is required")
	}
	seen := make(map[string]bool, len(t.SessionIdentifiers))
	for _, id := range t.SessionIdentifiers {
		if seen[id] {
			return NewValidationError("session_identifiers", "contains duplicate "+id)
		}
		seen[id] = true
	}

	_, err := t.IncludedSessions(sessions)
	return err
}

// IncludedSessions resolves the identifiers against sessions of the same
// event, in identifier order. Unknown identifiers are an error.
func (t *TicketType) IncludedSessions(sessions []*Session) ([]*Session, error) {
	byIdentifier := make(map[string]*Session, len(sessions))
	for _, s := range sessions {
		if s.EventID == t.EventID {
			byIdentifier[s.Identifier] = s
		}
	}

	included := make([]*Session, 0, len(t.SessionIdentifiers))
	var missing []string
	for _, id := range t.SessionIdentifiers {
		s, ok := byIdentifier[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		included = append(included, s)
	}
	if len(missing) > 0 {
		return nil, ErrOrphanSessionReference.WithDetails(map[string]interface{}{
			"ticket_type": t.Name,
			"missing":     missing,
		})
	}
	sort.SliceStable(included, func(i, j int) bool {
		return SessionIdentifierLess(included[i].Identifier, included[j].Identifier)
	})
	return included, nil
}

// Availability is the free capacity of the tightest included session
func (t *TicketType) Availability(sessions []*Session) (int, error) {
	included, err := t.IncludedSessions(sessions)
	if err != nil {
		return 0, err
	}
	if len(included) == 0 {
		return 0, NewValidationError("session_identifiers", "at least one session is required")
	}
	return bottleneck(included).Available(), nil
}

// References reports whether the ticket type includes the session identifier
func (t *TicketType) References(identifier string) bool {
	for _, id := range t.SessionIdentifiers {
		if id == identifier {
			return true
		}
	}
	return false
}

// bottleneck returns the session with the least free capacity. sessions must not be empty.
func bottleneck(sessions []*Session) *Session {
	tightest := sessions[0]
	for _, s := range sessions[1:] {
		if s.Available() < tightest.Available() {
			tightest = s
		}
	}
	return tightest
}
