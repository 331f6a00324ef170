package dto

import (
	"encoding/json"

	"github.com/prohmpiriya/community-events/internal/domain"
)

// CreateRSVPRequest represents the request to RSVP to a social event
type CreateRSVPRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// CreateTicketPurchaseRequest represents the request to buy a class ticket.
// Payment is authorized elsewhere; PaymentMethodID is recorded as given.
type CreateTicketPurchaseRequest struct {
	TicketTypeID    *string `json:"ticket_type_id" binding:"omitempty,uuid"`
	PaymentMethodID string  `json:"payment_method_id" binding:"max=255"`
	Notes           string  `json:"notes" binding:"max=1000"`
}

// CancelParticipationRequest represents the request to cancel a participation
type CancelParticipationRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ParticipationListFilter represents filters for listing participations
type ParticipationListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=active cancelled"`
	Type   string `form:"type" binding:"omitempty,oneof=rsvp ticket"`
	Pagination
}

// ParticipationStatusResponse is a participation as seen by its owner
type ParticipationStatusResponse struct {
	ID                 string   `json:"id"`
	EventID            string   `json:"event_id"`
	UserID             string   `json:"user_id"`
	Type               string   `json:"type"`
	Status             string   `json:"status"`
	TicketTypeID       *string  `json:"ticket_type_id,omitempty"`
	SessionIdentifiers []string `json:"session_identifiers"`
	Notes              string   `json:"notes"`
	CanCancel          bool     `json:"can_cancel"`
	CreatedAt          string   `json:"created_at"`
	CancelledAt        *string  `json:"cancelled_at,omitempty"`
	CancellationReason string   `json:"cancellation_reason,omitempty"`
}

// ToParticipationStatusResponse converts a participation view
func ToParticipationStatusResponse(v *domain.ParticipationView) *ParticipationStatusResponse {
	p := v.Participation
	sessions := p.SessionIdentifiers
	if sessions == nil {
		sessions = []string{}
	}
	return &ParticipationStatusResponse{
		ID:                 p.ID,
		EventID:            p.EventID,
		UserID:             p.UserID,
		Type:               string(p.Type),
		Status:             string(p.Status),
		TicketTypeID:       p.TicketTypeID,
		SessionIdentifiers: sessions,
		Notes:              p.Notes,
		CanCancel:          v.CanCancel,
		CreatedAt:          formatTime(p.CreatedAt),
		CancelledAt:        formatTimePtr(p.CancelledAt),
		CancellationReason: p.CancellationReason,
	}
}

// UserParticipationResponse is one row of a user's participation list
type UserParticipationResponse struct {
	ParticipationID string  `json:"participation_id"`
	EventID         string  `json:"event_id"`
	EventTitle      string  `json:"event_title"`
	EventType       string  `json:"event_type"`
	EventStartDate  *string `json:"event_start_date,omitempty"`
	EventLocation   string  `json:"event_location"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	CanCancel       bool    `json:"can_cancel"`
	CreatedAt       string  `json:"created_at"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
}

// ToUserParticipationResponses converts user participation summaries
func ToUserParticipationResponses(items []*domain.UserParticipationSummary) []*UserParticipationResponse {
	out := make([]*UserParticipationResponse, 0, len(items))
	for _, it := range items {
		p := it.Participation
		row := &UserParticipationResponse{
			ParticipationID: p.ID,
			EventID:         p.EventID,
			Type:            string(p.Type),
			Status:          string(p.Status),
			CanCancel:       it.CanCancel,
			CreatedAt:       formatTime(p.CreatedAt),
			CancelledAt:     formatTimePtr(p.CancelledAt),
		}
		if it.Event != nil {
			row.EventTitle = it.Event.Title
			row.EventType = string(it.Event.Type)
			row.EventStartDate = formatTimePtr(&it.Event.StartDate)
			row.EventLocation = it.Event.Location
		}
		out = append(out, row)
	}
	return out
}

// EventParticipationResponse is one row of an event's attendee list
type EventParticipationResponse struct {
	ParticipationID    string   `json:"participation_id"`
	UserID             string   `json:"user_id"`
	UserName           string   `json:"user_name"`
	UserEmail          string   `json:"user_email"`
	Type               string   `json:"type"`
	Status             string   `json:"status"`
	TicketTypeID       *string  `json:"ticket_type_id,omitempty"`
	SessionIdentifiers []string `json:"session_identifiers"`
	PaymentMethodID    string   `json:"payment_method_id,omitempty"`
	Notes              string   `json:"notes"`
	CreatedAt          string   `json:"created_at"`
	CancelledAt        *string  `json:"cancelled_at,omitempty"`
	CancellationReason string   `json:"cancellation_reason,omitempty"`
}

// ToEventParticipationResponses converts event participation summaries
func ToEventParticipationResponses(items []*domain.EventParticipationSummary) []*EventParticipationResponse {
	out := make([]*EventParticipationResponse, 0, len(items))
	for _, it := range items {
		p := it.Participation
		sessions := p.SessionIdentifiers
		if sessions == nil {
			sessions = []string{}
		}
		row := &EventParticipationResponse{
			ParticipationID:    p.ID,
			UserID:             p.UserID,
			Type:               string(p.Type),
			Status:             string(p.Status),
			TicketTypeID:       p.TicketTypeID,
			SessionIdentifiers: sessions,
			PaymentMethodID:    p.PaymentMethodID,
			Notes:              p.Notes,
			CreatedAt:          formatTime(p.CreatedAt),
			CancelledAt:        formatTimePtr(p.CancelledAt),
			CancellationReason: p.CancellationReason,
		}
		if it.User != nil {
			row.UserName = it.User.Name
			row.UserEmail = it.User.Email
		}
		out = append(out, row)
	}
	return out
}

// HistoryResponse is one audit record
type HistoryResponse struct {
	ID              string          `json:"id"`
	ParticipationID string          `json:"participation_id"`
	Action          string          `json:"action"`
	OldValue        json.RawMessage `json:"old_value"`
	NewValue        json.RawMessage `json:"new_value"`
	ChangedBy       string          `json:"changed_by"`
	ChangeReason    string          `json:"change_reason,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// ToHistoryResponses converts audit records
func ToHistoryResponses(items []*domain.ParticipationHistory) []*HistoryResponse {
	out := make([]*HistoryResponse, 0, len(items))
	for _, h := range items {
		old := h.OldValue
		if len(old) == 0 {
			old = json.RawMessage("null")
		}
		out = append(out, &HistoryResponse{
			ID:              h.ID,
			ParticipationID: h.ParticipationID,
			Action:          string(h.Action),
			OldValue:        old,
			NewValue:        h.NewValue,
			ChangedBy:       h.ChangedBy,
			ChangeReason:    h.ChangeReason,
			CreatedAt:       formatTime(h.CreatedAt),
		})
	}
	return out
}
