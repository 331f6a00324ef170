package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/pkg/middleware"
	"github.com/prohmpiriya/community-events/pkg/response"
)

// RoleAdmin may manage events and see attendee lists
const RoleAdmin = "admin"

// EventHandler handles event and availability HTTP requests
type EventHandler struct {
	eventService        service.EventService
	availabilityService service.AvailabilityService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService, availabilityService service.AvailabilityService) *EventHandler {
	return &EventHandler{
		eventService:        eventService,
		availabilityService: availabilityService,
	}
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middleware.ContextKeyRole) == RoleAdmin
}

// List handles GET /events. Drafts are only listed for admins.
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, "Invalid query parameters")
		return
	}
	filter.PublishedOnly = !isAdmin(c)
	filter.SetDefaults()

	events, total, err := h.eventService.ListEvents(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(dto.ToEventResponses(events), filter.Page, filter.PerPage, int64(total)))
}

// GetByID handles GET /events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	if !event.IsPublished && !isAdmin(c) {
		handleError(c, domain.ErrEventNotFound)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToEventResponse(event)))
}

// Availability handles GET /events/:id/availability
func (h *EventHandler) Availability(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	availability, err := h.availabilityService.GetEventAvailability(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToAvailabilityResponse(availability)))
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		bindError(c, msg)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.ToEventResponse(event)))
}

// Update handles PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		bindError(c, msg)
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToEventResponse(event)))
}

// Publish handles POST /events/:id/publish
func (h *EventHandler) Publish(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	event, err := h.eventService.PublishEvent(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToEventResponse(event)))
}

// Delete handles DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Event deleted successfully"}))
}
