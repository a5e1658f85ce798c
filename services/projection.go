package services

import (
	"time"

	"github.com/openfatura/fatura-api/models"
)

// ProjectInvoices forecasts the next `months` invoice totals starting
// at referenceDate's calendar month (index 0 = current month). Each
// projected month combines the parcels still due from consolidated
// installment series with every active recurring charge, assumed to
// continue at its mean amount. Index 0 is special: its total is the
// reconstructed open-cycle amount, because the open cycle also carries
// one-off charges the projector cannot see.
func (s *BillingService) ProjectInvoices(txs []models.Transaction, months int, referenceDate time.Time) []models.MonthlyProjection {
	if months <= 0 {
		months = s.cfg.DefaultHorizonMonths
	}

	series := s.ConsolidateSeries(txs)
	var active []models.RecurringTransaction
	for _, r := range s.DetectRecurring(txs, referenceDate) {
		if r.IsActive {
			active = append(active, r)
		}
	}

	recurringTotal := 0.0
	for _, r := range active {
		recurringTotal += r.Amount
	}

	base := monthStart(referenceDate)
	projections := make([]models.MonthlyProjection, 0, months)

	for i := 0; i < months; i++ {
		month := base.AddDate(0, i, 0)

		var installments []models.InstallmentProjection
		installmentsTotal := 0.0
		for _, ser := range series {
			elapsed := monthsBetween(month, ser.Transaction.Date)
			if elapsed <= 0 || elapsed > ser.Remaining() {
				continue
			}
			parcel := ser.Current + elapsed
			if parcel > ser.Total {
				// unreachable given the Remaining bound, checked anyway
				continue
			}
			installments = append(installments, models.InstallmentProjection{
				Description: ser.BaseDescription,
				Amount:      ser.Amount,
				Parcel:      parcel,
				Total:       ser.Total,
			})
			installmentsTotal += ser.Amount
		}

		p := models.MonthlyProjection{
			Month:        monthLabel(month),
			MonthKey:     monthKey(month),
			Total:        installmentsTotal + recurringTotal,
			Installments: installments,
			Recurring:    active,
			Breakdown: models.ProjectionBreakdown{
				InstallmentsTotal: installmentsTotal,
				RecurringTotal:    recurringTotal,
			},
		}
		if i == 0 {
			p.Total = s.CurrentInvoiceTotal(txs)
		}
		projections = append(projections, p)
	}

	return projections
}

// ProjectFuture splits the projection into the authoritative current
// month and the purely forecast future months, the shape the dashboard
// consumes.
func (s *BillingService) ProjectFuture(txs []models.Transaction, months int, referenceDate time.Time) models.ProjectionResult {
	all := s.ProjectInvoices(txs, months, referenceDate)
	return models.ProjectionResult{
		CurrentMonth: all[0],
		FutureMonths: all[1:],
	}
}
