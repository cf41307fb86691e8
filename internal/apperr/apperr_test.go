package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsServiceErrors(t *testing.T) {
	nf := NotFound("Merchant not found")
	wrapped := fmt.Errorf("lookup: %w", nf)

	got := Wrap(wrapped, "Unable to fetch wallet balance")
	assert.Equal(t, KindNotFound, KindOf(got))
	assert.Equal(t, http.StatusNotFound, StatusOf(got))
	assert.Equal(t, "Merchant not found", MessageOf(got))
}

func TestWrapForeignError(t *testing.T) {
	cause := errors.New("database is locked")
	got := Wrap(cause, "Unable to fetch wallet balance")

	assert.Equal(t, KindInternal, KindOf(got))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(got))
	assert.Equal(t, "Unable to fetch wallet balance", MessageOf(got))
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Wrap(nil, "unused"))
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("disburse: %w", ErrInsufficientFunds)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ErrZeroBalance)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	assert.Equal(t, http.StatusNotFound, StatusOf(Missing("Merchant ID must be given")))
	assert.Equal(t, KindInvalidArgument, KindOf(Missing("Merchant ID must be given")))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("boom")))
}
