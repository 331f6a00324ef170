package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories a caller can act on
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindForbidden        ErrorKind = "forbidden"
	KindConflict         ErrorKind = "conflict"
	KindCapacityExceeded ErrorKind = "capacity_exceeded"
	KindInvalidState     ErrorKind = "invalid_state"
	KindValidation       ErrorKind = "validation"
	KindUnexpected       ErrorKind = "unexpected"
)

// Error is a business failure. Code identifies the specific rule, Kind the
// category used for transport mapping.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code when the target has one and on Kind otherwise, so both
// errors.Is(err, ErrEventFull) and errors.Is(err, ErrCapacityExceeded) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Kind == e.Kind
}

// WithDetails returns a copy carrying extra context
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	for k, v := range details {
		cp.Details[k] = v
	}
	return &cp
}

// WithMessage returns a copy with a more specific message
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Kind-level sentinels
var (
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded, Message: "capacity exceeded"}
	ErrInvalidState     = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "validation failed"}
)

var (
	ErrUserNotFound          = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrEventNotFound         = newError(KindNotFound, "EVENT_NOT_FOUND", "event not found")
	ErrSessionNotFound       = newError(KindNotFound, "SESSION_NOT_FOUND", "session not found")
	ErrTicketTypeNotFound    = newError(KindNotFound, "TICKET_TYPE_NOT_FOUND", "ticket type not found")
	ErrParticipationNotFound = newError(KindNotFound, "PARTICIPATION_NOT_FOUND", "participation not found")

	ErrNotVetted    = newError(KindForbidden, "NOT_VETTED", "Only vetted members can RSVP")
	ErrUserInactive = newError(KindForbidden, "USER_INACTIVE", "user account is not active")

	ErrAlreadyParticipating       = newError(KindConflict, "ALREADY_PARTICIPATING", "user already has an active participation for this event")
	ErrDuplicateSessionIdentifier = newError(KindConflict, "DUPLICATE_SESSION_IDENTIFIER", "session identifier already used in this event")

	ErrEventFull   = newError(KindCapacityExceeded, "EVENT_FULL", "event is at capacity")
	ErrSessionFull = newError(KindCapacityExceeded, "SESSION_FULL", "session is at capacity")

	ErrWrongEventType          = newError(KindInvalidState, "WRONG_EVENT_TYPE", "event type does not accept this kind of participation")
	ErrEventNotPublished       = newError(KindInvalidState, "EVENT_NOT_PUBLISHED", "event is not published")
	ErrEventConcluded          = newError(KindInvalidState, "EVENT_CONCLUDED", "event has already concluded")
	ErrNotCancellable          = newError(KindInvalidState, "NOT_CANCELLABLE", "participation cannot be cancelled")
	ErrRegisteredCountNegative = newError(KindInvalidState, "REGISTERED_COUNT_NEGATIVE", "registered count cannot go below zero")
	ErrTicketTypeInactive      = newError(KindInvalidState, "TICKET_TYPE_INACTIVE", "ticket type is not available for purchase")
	ErrSessionInUse            = newError(KindInvalidState, "SESSION_IN_USE", "session has registrations or is referenced by a ticket type")
	ErrEventHasParticipants    = newError(KindInvalidState, "EVENT_HAS_PARTICIPANTS", "event has active participations")
	ErrEventTypeLocked         = newError(KindInvalidState, "EVENT_TYPE_LOCKED", "event type cannot change while participations are active")

	ErrInvalidInput            = newError(KindValidation, "INVALID_INPUT", "invalid input")
	ErrSessionOverlap          = newError(KindValidation, "SESSION_OVERLAP", "session overlaps another session of the event")
	ErrCapacityBelowRegistered = newError(KindValidation, "CAPACITY_BELOW_REGISTERED", "capacity cannot be lower than current registrations")
	ErrOrphanSessionReference  = newError(KindValidation, "UNKNOWN_SESSION", "ticket type references sessions that do not exist on the event")
	ErrTicketTypeRequired      = newError(KindValidation, "TICKET_TYPE_REQUIRED", "a ticket type must be chosen for this event")

	ErrUnexpected = newError(KindUnexpected, "INTERNAL_ERROR", "an unexpected error occurred")
)

// NewValidationError reports a malformed field
func NewValidationError(field, message string) *Error {
	return ErrInvalidInput.
		WithMessage("%s: %s", field, message).
		WithDetails(map[string]interface{}{"field": field})
}

// KindOf classifies any error; non-domain errors are Unexpected
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// AsError extracts the domain error, mapping anything else to ErrUnexpected
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrUnexpected
}
