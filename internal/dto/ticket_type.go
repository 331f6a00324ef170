package dto

import "github.com/prohmpiriya/community-events/internal/domain"

// CreateTicketTypeRequest represents the request to add a ticket type to an event
type CreateTicketTypeRequest struct {
	Name               string   `json:"name" binding:"required,min=1,max=255"`
	Description        string   `json:"description"`
	Pricing            string   `json:"pricing" binding:"omitempty,oneof=fixed sliding_scale"`
	Price              float64  `json:"price"`
	MinPrice           float64  `json:"min_price"`
	SuggestedPrice     float64  `json:"suggested_price"`
	MaxPrice           float64  `json:"max_price"`
	SessionIdentifiers []string `json:"session_identifiers" binding:"required,min=1"`
	SortOrder          int      `json:"sort_order"`
}

// ToDomain builds the unvalidated ticket type for eventID
func (r *CreateTicketTypeRequest) ToDomain(eventID string) domain.TicketType {
	return domain.TicketType{
		EventID:            eventID,
		Name:               r.Name,
		Description:        r.Description,
		Pricing:            domain.PricingMode(r.Pricing),
		Price:              r.Price,
		MinPrice:           r.MinPrice,
		SuggestedPrice:     r.SuggestedPrice,
		MaxPrice:           r.MaxPrice,
		SessionIdentifiers: r.SessionIdentifiers,
		SortOrder:          r.SortOrder,
	}
}

// UpdateTicketTypeRequest represents a partial ticket type edit
type UpdateTicketTypeRequest struct {
	Name               *string   `json:"name" binding:"omitempty,min=1,max=255"`
	Description        *string   `json:"description"`
	Pricing            *string   `json:"pricing" binding:"omitempty,oneof=fixed sliding_scale"`
	Price              *float64  `json:"price"`
	MinPrice           *float64  `json:"min_price"`
	SuggestedPrice     *float64  `json:"suggested_price"`
	MaxPrice           *float64  `json:"max_price"`
	SessionIdentifiers *[]string `json:"session_identifiers"`
	IsActive           *bool     `json:"is_active"`
	SortOrder          *int      `json:"sort_order"`
}

// Apply overlays the request onto t
func (r *UpdateTicketTypeRequest) Apply(t *domain.TicketType) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Pricing != nil {
		t.Pricing = domain.PricingMode(*r.Pricing)
	}
	if r.Price != nil {
		t.Price = *r.Price
	}
	if r.MinPrice != nil {
		t.MinPrice = *r.MinPrice
	}
	if r.SuggestedPrice != nil {
		t.SuggestedPrice = *r.SuggestedPrice
	}
	if r.MaxPrice != nil {
		t.MaxPrice = *r.MaxPrice
	}
	if r.SessionIdentifiers != nil {
		t.SessionIdentifiers = append([]string(nil), (*r.SessionIdentifiers)...)
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	if r.SortOrder != nil {
		t.SortOrder = *r.SortOrder
	}
}

// TicketTypeResponse represents the response for a ticket type
type TicketTypeResponse struct {
	ID                 string   `json:"id"`
	EventID            string   `json:"event_id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Pricing            string   `json:"pricing"`
	Price              float64  `json:"price"`
	MinPrice           float64  `json:"min_price"`
	SuggestedPrice     float64  `json:"suggested_price"`
	MaxPrice           float64  `json:"max_price"`
	SessionIdentifiers []string `json:"session_identifiers"`
	IsActive           bool     `json:"is_active"`
	SortOrder          int      `json:"sort_order"`
	Available          int      `json:"available"`
	Purchasable        int      `json:"purchasable"`
	LimitingSession    string   `json:"limiting_session,omitempty"`
}

// ToTicketTypeResponse converts a ticket type and its availability
func ToTicketTypeResponse(t *domain.TicketType, a domain.TicketTypeAvailability) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:                 t.ID,
		EventID:            t.EventID,
		Name:               t.Name,
		Description:        t.Description,
		Pricing:            string(t.Pricing),
		Price:              t.Price,
		MinPrice:           t.MinPrice,
		SuggestedPrice:     t.SuggestedPrice,
		MaxPrice:           t.MaxPrice,
		SessionIdentifiers: t.SessionIdentifiers,
		IsActive:           t.IsActive,
		SortOrder:          t.SortOrder,
		Available:          a.Available,
		Purchasable:        a.Purchasable,
		LimitingSession:    a.LimitingSession,
	}
}

// ToTicketTypeResponses converts ticket types with availability
func ToTicketTypeResponses(items []domain.TicketTypeWithAvailability) []*TicketTypeResponse {
	out := make([]*TicketTypeResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ToTicketTypeResponse(it.TicketType, it.Availability))
	}
	return out
}
