package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/pkg/middleware"
	"github.com/prohmpiriya/community-events/pkg/response"
	"github.com/prohmpiriya/community-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ParticipationHandler handles RSVP and ticket HTTP requests
type ParticipationHandler struct {
	participationService service.ParticipationService
}

// NewParticipationHandler creates a new ParticipationHandler
func NewParticipationHandler(participationService service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participationService: participationService}
}

func callerID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("authentication required"))
	}
	return userID, ok
}

// GetStatus handles GET /events/:id/participation
func (h *ParticipationHandler) GetStatus(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, found := pathID(c, domain.ErrEventNotFound)
	if !found {
		return
	}

	view, err := h.participationService.GetParticipationStatus(c.Request.Context(), id, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, response.Success(nil))
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToParticipationStatusResponse(view)))
}

// CreateRSVP handles POST /events/:id/rsvp
func (h *ParticipationHandler) CreateRSVP(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.participation.rsvp")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, found := pathID(c, domain.ErrEventNotFound)
	if !found {
		return
	}
	span.SetAttributes(attribute.String("user_id", userID))

	var req dto.CreateRSVPRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.participationService.CreateRSVP(ctx, id, userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.ToParticipationStatusResponse(view)))
}

// CreateTicketPurchase handles POST /events/:id/tickets
func (h *ParticipationHandler) CreateTicketPurchase(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.participation.ticket")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, found := pathID(c, domain.ErrEventNotFound)
	if !found {
		return
	}
	span.SetAttributes(attribute.String("user_id", userID))

	var req dto.CreateTicketPurchaseRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.participationService.CreateTicketPurchase(ctx, id, userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.ToParticipationStatusResponse(view)))
}

// Cancel handles POST /events/:id/participation/cancel
func (h *ParticipationHandler) Cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, found := pathID(c, domain.ErrEventNotFound)
	if !found {
		return
	}

	var req dto.CancelParticipationRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.participationService.CancelParticipation(c.Request.Context(), id, userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToParticipationStatusResponse(view)))
}

// ListMine handles GET /me/participations
func (h *ParticipationHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var filter dto.ParticipationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, "Invalid query parameters")
		return
	}
	filter.SetDefaults()

	items, total, err := h.participationService.GetUserParticipations(c.Request.Context(), userID, &filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(dto.ToUserParticipationResponses(items), filter.Page, filter.PerPage, int64(total)))
}

// ListByEvent handles GET /events/:id/participations
func (h *ParticipationHandler) ListByEvent(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	var filter dto.ParticipationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, "Invalid query parameters")
		return
	}
	filter.SetDefaults()

	items, total, err := h.participationService.GetEventParticipations(c.Request.Context(), id, &filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(dto.ToEventParticipationResponses(items), filter.Page, filter.PerPage, int64(total)))
}

// History handles GET /participations/:id/history
func (h *ParticipationHandler) History(c *gin.Context) {
	id, ok := pathID(c, domain.ErrParticipationNotFound)
	if !ok {
		return
	}

	history, err := h.participationService.GetParticipationHistory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToHistoryResponses(history)))
}
