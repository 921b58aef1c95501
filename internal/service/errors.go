package service

import (
	"context"
	"errors"
	"net"

	"connectrpc.com/connect"

	"github.com/mmynk/pgstay/internal/bootstrap"
	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/internal/sheets"
)

var errInvalidArgument = errors.New("invalid argument")

// toConnectError maps repository, bootstrap and Sheets failures onto Connect
// codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var (
		fieldErr *sheets.FieldError
		netErr   net.Error
	)
	code := connect.CodeInternal
	switch {
	case errors.Is(err, repository.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, errInvalidArgument), errors.Is(err, bootstrap.ErrUnknownSheet):
		code = connect.CodeInvalidArgument
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.As(err, &fieldErr):
		code = connect.CodeFailedPrecondition
	case sheets.IsUnauthorized(err):
		code = connect.CodePermissionDenied
	case sheets.IsRateLimited(err):
		code = connect.CodeResourceExhausted
	case sheets.IsTransient(err), errors.As(err, &netErr):
		code = connect.CodeUnavailable
	}
	return connect.NewError(code, err)
}
