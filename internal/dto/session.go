package dto

import (
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
)

const dateLayout = "2006-01-02"

// CreateSessionRequest represents the request to add a session to an event
type CreateSessionRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Name       string `json:"name" binding:"max=255"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required"`
	IsRequired bool   `json:"is_required"`
}

// Details parses the request into session details
func (r *CreateSessionRequest) Details() (domain.SessionDetails, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return domain.SessionDetails{}, domain.NewValidationError("date", "must be YYYY-MM-DD")
	}
	start, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return domain.SessionDetails{}, domain.NewValidationError("start_time", "must be HH:MM")
	}
	end, err := domain.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return domain.SessionDetails{}, domain.NewValidationError("end_time", "must be HH:MM")
	}
	return domain.SessionDetails{
		Name:       r.Name,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Capacity:   r.Capacity,
		IsRequired: r.IsRequired,
	}, nil
}

// UpdateSessionRequest represents a partial session edit
type UpdateSessionRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=255"`
	Date       *string `json:"date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Capacity   *int    `json:"capacity"`
	IsRequired *bool   `json:"is_required"`
}

// Apply overlays the request onto the current details of s
func (r *UpdateSessionRequest) Apply(s *domain.Session) (domain.SessionDetails, error) {
	d := domain.SessionDetails{
		Name:       s.Name,
		Date:       s.Date,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Capacity:   s.Capacity,
		IsRequired: s.IsRequired,
	}
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Date != nil {
		date, err := time.Parse(dateLayout, *r.Date)
		if err != nil {
			return d, domain.NewValidationError("date", "must be YYYY-MM-DD")
		}
		d.Date = date
	}
	if r.StartTime != nil {
		start, err := domain.ParseTimeOfDay(*r.StartTime)
		if err != nil {
			return d, domain.NewValidationError("start_time", "must be HH:MM")
		}
		d.StartTime = start
	}
	if r.EndTime != nil {
		end, err := domain.ParseTimeOfDay(*r.EndTime)
		if err != nil {
			return d, domain.NewValidationError("end_time", "must be HH:MM")
		}
		d.EndTime = end
	}
	if r.Capacity != nil {
		d.Capacity = *r.Capacity
	}
	if r.IsRequired != nil {
		d.IsRequired = *r.IsRequired
	}
	return d, nil
}

// SessionResponse represents the response for a session
type SessionResponse struct {
	ID              string `json:"id"`
	EventID         string `json:"event_id"`
	Identifier      string `json:"identifier"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Capacity        int    `json:"capacity"`
	RegisteredCount int    `json:"registered_count"`
	Available       int    `json:"available"`
	IsRequired      bool   `json:"is_required"`
}

// ToSessionResponse converts a domain session to its response shape
func ToSessionResponse(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:              s.ID,
		EventID:         s.EventID,
		Identifier:      s.Identifier,
		Name:            s.Name,
		Date:            s.Date.Format(dateLayout),
		StartTime:       domain.FormatTimeOfDay(s.StartTime),
		EndTime:         domain.FormatTimeOfDay(s.EndTime),
		Capacity:        s.Capacity,
		RegisteredCount: s.RegisteredCount,
		Available:       max(s.Available(), 0),
		IsRequired:      s.IsRequired,
	}
}

// ToSessionResponses converts a list of sessions
func ToSessionResponses(sessions []*domain.Session) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionResponse(s))
	}
	return out
}

// SessionUpdateResponse is a session edit with the recomputed availability
// of the ticket types that include it
type SessionUpdateResponse struct {
	Session              *SessionResponse                  `json:"session"`
	DependentTicketTypes []*TicketTypeAvailabilityResponse `json:"dependent_ticket_types"`
}

// ToSessionUpdateResponse converts a session update result
func ToSessionUpdateResponse(u *domain.SessionUpdate) *SessionUpdateResponse {
	deps := make([]*TicketTypeAvailabilityResponse, 0, len(u.Dependents))
	for _, d := range u.Dependents {
		deps = append(deps, ToTicketTypeAvailabilityResponse(d))
	}
	return &SessionUpdateResponse{
		Session:              ToSessionResponse(u.Session),
		DependentTicketTypes: deps,
	}
}
