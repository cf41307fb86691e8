package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/calculator"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage"
)

// ReportService maintains settlement reports.
type ReportService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(store storage.Store, opts ...Option) *ReportService {
	o := newOptions(opts)
	return &ReportService{store: store, logger: o.logger}
}

// DivideSettlementRecords splits each listed report into factor equal parts,
// keeping one part. IDs that do not exist are skipped; if none exist the call
// fails.
func (s *ReportService) DivideSettlementRecords(ctx context.Context, ids []int64, factor decimal.Decimal) ([]models.SettlementReport, error) {
	if len(ids) == 0 || !factor.IsPositive() {
		return nil, apperr.Missing("Invalid Body Values").WithCode(apperr.CodeInvalidBody)
	}

	var divided []models.SettlementReport
	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		reports, err := q.GetSettlementReports(ctx, ids)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			return apperr.Invalid("Invalid Settlement IDs").WithCode(apperr.CodeInvalidIDs)
		}

		divided = calculator.DivideReports(reports, factor)
		for i := range divided {
			if err := q.UpdateSettlementReportAmounts(ctx, &divided[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to divide settlement records")
	}

	s.logger.Info("Divided settlement reports", "count", len(divided), "factor", factor.String())
	return divided, nil
}
