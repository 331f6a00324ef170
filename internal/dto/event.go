package dto

import (
	"time"

	"github.com/prohmpiriya/community-events/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=255"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"max=255"`
	Type        string    `json:"type" binding:"required,oneof=class social member_only"`
	Capacity    int       `json:"capacity" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if r.Title == "" {
		return false, "Event title is required"
	}
	if r.Capacity < domain.MinEventCapacity || r.Capacity > domain.MaxEventCapacity {
		return false, "Capacity must be between 1 and 1000"
	}
	if !r.EndDate.After(r.StartDate) {
		return false, "End date must be after start date"
	}
	return true, ""
}

// UpdateEventRequest represents the request to update an event.
// Nil fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" binding:"omitempty,max=255"`
	Type        *string    `json:"type" binding:"omitempty,oneof=class social member_only"`
	Capacity    *int       `json:"capacity"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// Validate validates the UpdateEventRequest
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Capacity != nil && (*r.Capacity < domain.MinEventCapacity || *r.Capacity > domain.MaxEventCapacity) {
		return false, "Capacity must be between 1 and 1000"
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return false, "End date must be after start date"
	}
	return true, ""
}

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Type          string `form:"type"`
	PublishedOnly bool   `form:"-"`
	Upcoming      bool   `form:"upcoming"`
	Pagination
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Capacity    int    `json:"capacity"`
	IsPublished bool   `json:"is_published"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ToEventResponse converts a domain event to its response shape
func ToEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Type:        string(e.Type),
		Capacity:    e.Capacity,
		IsPublished: e.IsPublished,
		StartDate:   formatTime(e.StartDate),
		EndDate:     formatTime(e.EndDate),
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	}
}

// ToEventResponses converts a list of events
func ToEventResponses(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, ToEventResponse(e))
	}
	return out
}
