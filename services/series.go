package services

import (
	"fmt"
	"time"

	"github.com/openfatura/fatura-api/models"
)

// seriesKey groups installment observations that could belong to the
// same purchase: same base description, same per-parcel amount to two
// decimals, same total parcel count.
type seriesKey struct {
	base   string
	amount string
	total  int
}

// ConsolidateSeries de-duplicates installment observations into
// distinct purchase series. Input: the raw transaction list; only
// CREDIT expenses flagged as unfinished installments participate.
//
// Two observations join the same series only when, besides sharing the
// grouping key, their inferred first-parcel dates agree within the
// configured window AND the new observation's parcel number strictly
// advances the series. A parcel 1 always opens a new series: two
// unrelated purchases of the same item, price and term can legitimately
// co-exist. An observation that matches no series opens one too, which
// keeps installments whose opening parcel predates the available
// history.
//
// Known limitation: two genuinely different purchases sharing
// description, amount, total AND first-parcel date within the window
// will merge into one series. Accepted, bounded imprecision.
func (s *BillingService) ConsolidateSeries(txs []models.Transaction) []*models.InstallmentSeries {
	index := make(map[seriesKey][]*models.InstallmentSeries)
	var result []*models.InstallmentSeries

	add := func(k seriesKey, ser *models.InstallmentSeries) {
		index[k] = append(index[k], ser)
		result = append(result, ser)
	}

	for _, tx := range txs {
		if tx.AccountType != models.AccountCredit || tx.Amount <= 0 {
			continue
		}
		info := DetectInstallment(tx.Description)
		if !info.HasInstallment || info.Remaining <= 0 {
			continue
		}

		// exact day-of-month arithmetic: truncating to month start
		// loses the precision that separates unrelated purchases made
		// in the same month
		firstParcel := tx.Date.AddDate(0, -(info.Current - 1), 0)
		key := seriesKey{
			base:   BaseDescription(tx.Description),
			amount: fmt.Sprintf("%.2f", tx.Amount),
			total:  info.Total,
		}

		if info.Current == 1 {
			s.tracef("nova série (parcela 1): %s %s %d/%d", key.base, key.amount, info.Current, info.Total)
			add(key, &models.InstallmentSeries{
				BaseDescription: key.base,
				Amount:          tx.Amount,
				Total:           info.Total,
				Current:         info.Current,
				FirstParcelDate: firstParcel,
				Transaction:     tx,
			})
			continue
		}

		var match *models.InstallmentSeries
		for _, ser := range index[key] {
			// monotonic progression guard: a 2/12 can never continue a
			// series already at 5/12
			if ser.Current < info.Current && withinWindow(ser.FirstParcelDate, firstParcel, s.cfg.SeriesDateTolerance) {
				match = ser
				break
			}
		}
		if match != nil {
			s.tracef("série atualizada: %s %d/%d -> %d/%d", key.base, match.Current, match.Total, info.Current, info.Total)
			match.Current = info.Current
			match.Transaction = tx
			continue
		}

		s.tracef("nova série (observada a partir da parcela %d): %s %s", info.Current, key.base, key.amount)
		add(key, &models.InstallmentSeries{
			BaseDescription: key.base,
			Amount:          tx.Amount,
			Total:           info.Total,
			Current:         info.Current,
			FirstParcelDate: firstParcel,
			Transaction:     tx,
		})
	}

	return result
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
