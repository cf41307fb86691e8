// Package service implements the ledger operations on top of storage.Store.
// Services return *apperr.Error for every failure; transport concerns live in
// the rpc package.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/metrics"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage"
)

// Option configures a service.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the location whose calendar day "today" refers to.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func requireMerchantID(merchantID int64) error {
	if merchantID <= 0 {
		return apperr.Missing("Merchant ID is required")
	}
	return nil
}

// getMerchant loads a merchant and maps a missing row to NotFound.
func getMerchant(ctx context.Context, q storage.Queries, merchantID int64) (*models.Merchant, error) {
	m, err := q.GetMerchant(ctx, merchantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Merchant not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// lockMerchant takes the merchant row lock inside an Atomic block.
func lockMerchant(ctx context.Context, q storage.Queries, merchantID int64) error {
	err := q.LockMerchant(ctx, merchantID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("Merchant not found")
	}
	return err
}
