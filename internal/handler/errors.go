package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/pkg/response"
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict, domain.KindCapacityExceeded:
		return http.StatusConflict
	case domain.KindInvalidState:
		return http.StatusUnprocessableEntity
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the failure envelope for err
func handleError(c *gin.Context, err error) {
	de := domain.AsError(err)
	code := de.Code
	if code == "" {
		code = strings.ToUpper(string(de.Kind))
	}
	var details interface{}
	if len(de.Details) > 0 {
		details = de.Details
	}
	c.JSON(statusFor(de.Kind), response.ErrorWithDetails(code, de.Message, details))
}

func bindError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.BadRequest(msg))
}

// pathID reads the :id parameter in canonical form. An id that is not a UUID
// names nothing, so notFound is written and ok is false.
func pathID(c *gin.Context, notFound *domain.Error) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, notFound)
		return "", false
	}
	return id.String(), true
}

// bindOptionalJSON binds a body that may be absent, including an empty
// chunked body. It writes 400 and returns false on malformed JSON.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, "Invalid request body")
		return false
	}
	return true
}
