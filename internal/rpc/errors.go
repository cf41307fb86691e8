package rpc

import (
	"errors"
	"net/http"
	"strconv"

	"connectrpc.com/connect"

	"github.com/mmynk/paygate/internal/apperr"
)

// Error metadata keys. StatusHeader carries the HTTP-style status of the
// failure; ErrorCodeHeader carries the apperr code when there is one.
const (
	StatusHeader    = "Paygate-Status"
	ErrorCodeHeader = "Paygate-Error-Code"
)

// toConnectError converts a service error into a Connect error carrying only
// the caller-facing message.
func toConnectError(err error) error {
	code := connect.CodeInternal
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		code = connect.CodeNotFound
	case apperr.KindInvalidArgument:
		code = connect.CodeInvalidArgument
	}

	cerr := connect.NewError(code, errors.New(apperr.MessageOf(err)))
	cerr.Meta().Set(StatusHeader, strconv.Itoa(apperr.StatusOf(err)))

	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Code != "" {
		cerr.Meta().Set(ErrorCodeHeader, ae.Code)
	}
	return cerr
}

// StatusOf recovers the status code from an error returned by a Client.
func StatusOf(err error) int {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return http.StatusInternalServerError
	}
	if s, convErr := strconv.Atoi(cerr.Meta().Get(StatusHeader)); convErr == nil {
		return s
	}
	switch cerr.Code() {
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
