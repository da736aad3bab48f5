package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// StatusFor maps pipeline errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrRestartThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, dataset.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, sales.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
