package domain

// ParticipationView is a participation as seen by its owner
type ParticipationView struct {
	Participation *Participation
	// CanCancel is CanBeCancelled() and the event has not concluded
	CanCancel bool
}

// UserParticipationSummary is one row of a user's participation list.
// Event is nil when the event has since been deleted.
type UserParticipationSummary struct {
	Participation *Participation
	Event         *Event
	CanCancel     bool
}

// EventParticipationSummary is one row of an event's attendee list.
// User is nil when the identity record is unknown.
type EventParticipationSummary struct {
	Participation *Participation
	User          *User
}

// TicketTypeWithAvailability pairs a ticket type with its derived availability
type TicketTypeWithAvailability struct {
	TicketType   *TicketType
	Availability TicketTypeAvailability
}

// SessionUpdate is the result of a session edit. Dependents holds the
// recomputed availability of every ticket type that includes the session.
type SessionUpdate struct {
	Session    *Session
	Dependents []TicketTypeAvailability
}
