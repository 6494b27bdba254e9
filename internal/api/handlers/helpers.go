package handlers

import (
	"errors"
	"net/http"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Faults []string `json:"faults,omitempty"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// Status code for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDriverUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps typed errors to responses. Unknown errors are logged
// and hidden behind a generic 500.
func writeServiceError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("req_id", obs.RequestID(c.Request.Context())).
			Str("op", op).
			Msg("request failed")
		writeError(c, status, "internal server error")
		return
	}

	res := errorResponse{Error: err.Error()}
	var di *domain.DataIntegrityError
	if errors.As(err, &di) {
		for _, f := range di.Faults {
			res.Faults = append(res.Faults, f.String())
		}
	}
	c.AbortWithStatusJSON(status, res)
}
