package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
)

// DivideReports splits each report into factor equal parts and returns one
// part per report. Counts are left as they are; only money is divided.
func DivideReports(reports []models.SettlementReport, factor decimal.Decimal) []models.SettlementReport {
	out := make([]models.SettlementReport, len(reports))
	for i, r := range reports {
		out[i] = r.Divide(factor)
	}
	return out
}
