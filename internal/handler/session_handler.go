package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/dto"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/pkg/response"
)

// SessionHandler handles event session HTTP requests
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListByEvent handles GET /events/:id/sessions
func (h *SessionHandler) ListByEvent(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToSessionResponses(sessions)))
}

// Create handles POST /events/:id/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	id, ok := pathID(c, domain.ErrEventNotFound)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(dto.ToSessionResponse(session)))
}

// GetByID handles GET /sessions/:id
func (h *SessionHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, domain.ErrSessionNotFound)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToSessionResponse(session)))
}

// Update handles PUT /sessions/:id. The response includes the recomputed
// availability of dependent ticket types.
func (h *SessionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, domain.ErrSessionNotFound)
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Invalid request body")
		return
	}

	update, err := h.sessionService.UpdateSession(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.ToSessionUpdateResponse(update)))
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, domain.ErrSessionNotFound)
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Session deleted successfully"}))
}
