package httpapi

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/xtding233/idle-venues/internal/engine"
	"github.com/xtding233/idle-venues/internal/venue"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RequiredLevel int    `json:"required_level,omitempty"`
}

func statusFor(code string) int {
	switch code {
	case "invalid_tier", "bad_request", "level_not_reached":
		return http.StatusBadRequest
	case "unknown_character", "unknown_venue":
		return http.StatusNotFound
	case "internal", "assertion_failed":
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

func writeError(c *gin.Context, err error) {
	code := engine.ErrorCode(err)
	resp := ErrorResponse{Code: code, Message: err.Error()}
	var locked *venue.VenueLockedError
	if errors.As(err, &locked) {
		resp.RequiredLevel = locked.RequiredLevel
	}
	if code == "internal" || code == "assertion_failed" {
		_ = c.Error(err)
		resp.Message = "internal error"
	}
	c.AbortWithStatusJSON(statusFor(code), resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: msg})
}
