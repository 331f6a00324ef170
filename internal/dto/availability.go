package dto

import "github.com/prohmpiriya/community-events/internal/domain"

// SessionAvailabilityResponse is the capacity view of one session
type SessionAvailabilityResponse struct {
	SessionID  string `json:"session_id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Registered int    `json:"registered"`
	Available  int    `json:"available"`
}

// TicketTypeAvailabilityResponse is the capacity view of one ticket type
type TicketTypeAvailabilityResponse struct {
	TicketTypeID       string   `json:"ticket_type_id"`
	Name               string   `json:"name"`
	IsActive           bool     `json:"is_active"`
	Available          int      `json:"available"`
	Purchasable        int      `json:"purchasable"`
	LimitingSession    string   `json:"limiting_session"`
	SessionIdentifiers []string `json:"session_identifiers"`
}

// AvailabilityResponse is the capacity picture of an event
type AvailabilityResponse struct {
	EventID              string                            `json:"event_id"`
	Capacity             int                               `json:"capacity"`
	ActiveParticipations int                               `json:"active_participations"`
	Remaining            int                               `json:"remaining"`
	Sessions             []*SessionAvailabilityResponse    `json:"sessions"`
	TicketTypes          []*TicketTypeAvailabilityResponse `json:"ticket_types"`
}

// ToTicketTypeAvailabilityResponse converts a ticket type availability
func ToTicketTypeAvailabilityResponse(a domain.TicketTypeAvailability) *TicketTypeAvailabilityResponse {
	return &TicketTypeAvailabilityResponse{
		TicketTypeID:       a.TicketTypeID,
		Name:               a.Name,
		IsActive:           a.IsActive,
		Available:          a.Available,
		Purchasable:        a.Purchasable,
		LimitingSession:    a.LimitingSession,
		SessionIdentifiers: a.SessionIdentifiers,
	}
}

// ToAvailabilityResponse converts an event availability
func ToAvailabilityResponse(a *domain.EventAvailability) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		EventID:              a.EventID,
		Capacity:             a.Capacity,
		ActiveParticipations: a.ActiveParticipations,
		Remaining:            a.Remaining,
		Sessions:             make([]*SessionAvailabilityResponse, 0, len(a.Sessions)),
		TicketTypes:          make([]*TicketTypeAvailabilityResponse, 0, len(a.TicketTypes)),
	}
	for _, s := range a.Sessions {
		resp.Sessions = append(resp.Sessions, &SessionAvailabilityResponse{
			SessionID:  s.SessionID,
			Identifier: s.Identifier,
			Name:       s.Name,
			Capacity:   s.Capacity,
			Registered: s.Registered,
			Available:  s.Available,
		})
	}
	for _, t := range a.TicketTypes {
		resp.TicketTypes = append(resp.TicketTypes, ToTicketTypeAvailabilityResponse(t))
	}
	return resp
}
