package domain

import "sort"

// SessionAvailability is the derived capacity view of one session
type SessionAvailability struct {
	SessionID  string
	Identifier string
	Name       string
	Capacity   int
	Registered int
	Available  int
}

// TicketTypeAvailability is the derived capacity view of one ticket type.
// Available is the bottleneck over included sessions; Purchasable also
// applies the event's remaining capacity and the active flag.
type TicketTypeAvailability struct {
	TicketTypeID       string
	Name               string
	IsActive           bool
	Available          int
	Purchasable        int
	LimitingSession    string
	SessionIdentifiers []string
}

// EventAvailability is the full derived capacity picture of an event
type EventAvailability struct {
	EventID              string
	Capacity             int
	ActiveParticipations int
	Remaining            int
	Sessions             []SessionAvailability
	TicketTypes          []TicketTypeAvailability
}

// SessionAvailabilityOf derives the view of s
func SessionAvailabilityOf(s *Session) SessionAvailability {
	return SessionAvailability{
		SessionID:  s.ID,
		Identifier: s.Identifier,
		Name:       s.Name,
		Capacity:   s.Capacity,
		Registered: s.RegisteredCount,
		Available:  max(s.Available(), 0),
	}
}

// TicketTypeAvailabilityOf derives the view of t from the current sessions
func TicketTypeAvailabilityOf(t *TicketType, sessions []*Session, eventRemaining int) (TicketTypeAvailability, error) {
	included, err := t.IncludedSessions(sessions)
	if err != nil {
		return TicketTypeAvailability{}, err
	}
	if len(included) == 0 {
		return TicketTypeAvailability{}, NewValidationError("session_identifiers", "at least one session is required")
	}

	tightest := bottleneck(included)
	available := max(tightest.Available(), 0)

	purchasable := 0
	if t.IsActive {
		purchasable = min(available, max(eventRemaining, 0))
	}

	return TicketTypeAvailability{
		TicketTypeID:       t.ID,
		Name:               t.Name,
		IsActive:           t.IsActive,
		Available:          available,
		Purchasable:        purchasable,
		LimitingSession:    tightest.Identifier,
		SessionIdentifiers: append([]string(nil), t.SessionIdentifiers...),
	}, nil
}

// CalculateAvailability derives availability for an event from its current
// sessions, ticket types and active participation count. Nothing is cached.
func CalculateAvailability(event *Event, activeCount int, sessions []*Session, ticketTypes []*TicketType) (*EventAvailability, error) {
	remaining := max(event.Capacity-activeCount, 0)

	out := &EventAvailability{
		EventID:              event.ID,
		Capacity:             event.Capacity,
		ActiveParticipations: activeCount,
		Remaining:            remaining,
		Sessions:             make([]SessionAvailability, 0, len(sessions)),
		TicketTypes:          make([]TicketTypeAvailability, 0, len(ticketTypes)),
	}

	for _, s := range sessions {
		out.Sessions = append(out.Sessions, SessionAvailabilityOf(s))
	}
	sort.SliceStable(out.Sessions, func(i, j int) bool {
		return SessionIdentifierLess(out.Sessions[i].Identifier, out.Sessions[j].Identifier)
	})

	for _, t := range ticketTypes {
		ta, err := TicketTypeAvailabilityOf(t, sessions, remaining)
		if err != nil {
			return nil, err
		}
		out.TicketTypes = append(out.TicketTypes, ta)
	}

	return out, nil
}
