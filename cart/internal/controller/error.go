package controller

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/moa/storefront/internal/errors"
	inHttp "github.com/moa/storefront/internal/http"
	"github.com/moa/storefront/internal/otel"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrEmptyAuth),
		errors.Is(err, inErrors.ErrEmptySubject),
		errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, inErrors.ErrItemNotFound), errors.Is(err, inErrors.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c context.Context, w http.ResponseWriter, span trace.Span, err error) {
	otel.RecordError(err, span)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusFromError(err),
		"message":    err.Error(),
	})
}

func writeBadRequest(c context.Context, w http.ResponseWriter, err error) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": http.StatusBadRequest,
		"message":    err.Error(),
	})
}
