package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// mapErrorToHTTPStatus covers the rare hard failures; pipeline degradation
// (empty query, retrieval or generation trouble) already comes back as a
// 200 response with a degraded answer.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
