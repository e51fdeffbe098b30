package server

import (
	"context"
	"errors"
	"net/http"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/snapshot"

	"connectrpc.com/connect"
)

func connectError(err error) *connect.Error {
	switch {
	case errors.Is(err, domain.ErrInvalidMatch):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrUserNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrPlayerUpsertFailed):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// mapServiceErrorToHTTP picks the status and the message shown to the client.
// Internal errors are not echoed back.
func mapServiceErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidMatch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrPlayerUpsertFailed),
		errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "storage is temporarily unavailable, retry later"
	case errors.Is(err, snapshot.ErrUploadDisabled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "the server encountered a problem and could not process your request"
	}
}
