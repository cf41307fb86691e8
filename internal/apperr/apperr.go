// Package apperr defines the error kinds returned by the ledger services.
// Callers receive a message and a status code; the underlying cause is kept
// for logging but never shown.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// Codes for errors callers may want to branch on.
const (
	CodeInsufficientFunds = "insufficient_funds"
	CodeZeroBalance       = "zero_balance"
	CodeInvalidBody       = "invalid_body"
	CodeInvalidIDs        = "invalid_settlement_ids"
)

// Error is the structured error surfaced by services.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithCode returns a copy of e carrying code.
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

// NotFound reports a missing merchant, terms record, transaction or batch.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports malformed or insufficient input (400).
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Missing reports a required value that was not given. These keep the 404
// status the original controllers used for "must be given" checks.
func Missing(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a persistence or provider failure.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrInsufficientFunds is returned when eligible balances cannot cover a
// requested disbursement.
var ErrInsufficientFunds = Invalid("Insufficient funds to disburse the requested amount.").WithCode(CodeInsufficientFunds)

// ErrZeroBalance guards adjustments of an empty wallet.
var ErrZeroBalance = Invalid("Current balance is 0").WithCode(CodeZeroBalance)

// Wrap returns err unchanged when it already is an *Error, otherwise wraps it
// as Internal with message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err, "%s", message)
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// StatusOf returns the status code carried by err, 500 for foreign errors.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal server error"
}
