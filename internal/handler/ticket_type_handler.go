package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/pkg/response"
)

// TicketTypeHandler handles ticket type HTTP requests
type TicketTypeHandler struct {
	ticketTypeService service.TicketTypeService
}

// NewTicketTypeHandler creates a new TicketTypeHandler
func NewTicketTypeHandler(ticketTypeService service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{ticketTypeService: ticketTypeService}
}

// ListByEvent handles GET /events/:id/ticket-types
func (h *TicketTypeHandler) ListByEvent(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	items, err := h.ticketTypeService.ListTicketTypes(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToTicketTypeResponses(items)))
}

// Create handles POST /events/:id/ticket-types
func (h *TicketTypeHandler) Create(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	var req dto.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}

	created, err := h.ticketTypeService.CreateTicketType(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.ToTicketTypeResponse(created.TicketType, created.Availability)))
}

// GetByID handles GET /ticket-types/:id
func (h *TicketTypeHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, domain.ErrTicketTypeNotFound)
	if !ok {
		return
	}

	item, err := h.ticketTypeService.GetTicketType(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToTicketTypeResponse(item.TicketType, item.Availability)))
}

// Update handles PUT /ticket-types/:id
func (h *TicketTypeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, domain.ErrTicketTypeNotFound)
	if !ok {
		return
	}

	var req dto.UpdateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}

	item, err := h.ticketTypeService.UpdateTicketType(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToTicketTypeResponse(item.TicketType, item.Availability)))
}

// Delete handles DELETE /ticket-types/:id
func (h *TicketTypeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, domain.ErrTicketTypeNotFound)
	if !ok {
		return
	}

	if err := h.ticketTypeService.DeleteTicketType(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Ticket type deleted successfully"}))
}
