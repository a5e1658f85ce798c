package services

import (
	"math"
	"sort"
	"time"

	"github.com/openfatura/fatura-api/models"
)

// DetectRecurring finds subscription-like charges: CREDIT expenses with
// the same base description showing up in at least three distinct
// calendar months with stable amounts. Installment parcels never count,
// even when they repeat monthly. referenceDate decides which recurring
// charges are still active. Result is sorted by amount, highest first.
func (s *BillingService) DetectRecurring(txs []models.Transaction, referenceDate time.Time) []models.RecurringTransaction {
	type observation struct {
		amount float64
		date   time.Time
	}

	groups := make(map[string][]observation)
	seenMonth := make(map[string]map[string]bool)
	var order []string

	for _, tx := range txs {
		if tx.AccountType != models.AccountCredit || tx.Amount <= 0 {
			continue
		}
		if DetectInstallment(tx.Description).HasInstallment {
			continue
		}
		key := BaseDescription(tx.Description)
		mk := monthKey(tx.Date)
		if seenMonth[key] == nil {
			seenMonth[key] = make(map[string]bool)
			order = append(order, key)
		}
		// at most one observation per calendar month, first seen wins
		if seenMonth[key][mk] {
			continue
		}
		seenMonth[key][mk] = true
		groups[key] = append(groups[key], observation{amount: tx.Amount, date: tx.Date})
	}

	var result []models.RecurringTransaction
	for _, key := range order {
		obs := groups[key]
		if len(obs) < s.cfg.RecurringMinMonths {
			continue
		}

		sum := 0.0
		for _, o := range obs {
			sum += o.amount
		}
		mean := sum / float64(len(obs))

		stable := true
		for _, o := range obs {
			tolerance := (math.Abs(o.amount) + math.Abs(mean)) / 2 * s.cfg.RecurringTolerance
			if math.Abs(o.amount-mean) > tolerance {
				stable = false
				break
			}
		}
		if !stable {
			s.tracef("recorrente descartada (valores instáveis): %s", key)
			continue
		}

		last := obs[0].date
		for _, o := range obs[1:] {
			if o.date.After(last) {
				last = o.date
			}
		}
		active := monthsBetween(referenceDate, last) <= s.cfg.RecurringActiveWindowMonths

		s.tracef("recorrente: %s x%d média %.2f ativa=%v", key, len(obs), mean, active)
		result = append(result, models.RecurringTransaction{
			Description:    key,
			Amount:         mean,
			Frequency:      len(obs),
			IsActive:       active,
			LastOccurrence: monthKey(last),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result
}
