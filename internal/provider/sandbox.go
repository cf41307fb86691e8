package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sandbox is an in-process provider for development and tests. Amounts at or
// above DeclineAbove are declined, amounts at or above PendingAbove wait for a
// callback and everything else is captured immediately. Zero thresholds are
// ignored.
type Sandbox struct {
	name         string
	DeclineAbove decimal.Decimal
	PendingAbove decimal.Decimal
}

// NewSandbox creates a sandbox provider registered under name.
func NewSandbox(name string) *Sandbox {
	return &Sandbox{name: name}
}

func (s *Sandbox) Name() string { return s.name }

func (s *Sandbox) Initiate(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	ref := uuid.New().String()
	switch {
	case s.DeclineAbove.IsPositive() && req.Amount.GreaterThanOrEqual(s.DeclineAbove):
		return Err(ref, "declined by sandbox"), nil
	case s.PendingAbove.IsPositive() && req.Amount.GreaterThanOrEqual(s.PendingAbove):
		return Pending(ref), nil
	default:
		return Ok(ref), nil
	}
}
