package services

import (
	"sort"
	"time"

	"github.com/openfatura/fatura-api/models"
)

// MergeInvoices overlays the provider's closed statements on top of the
// calculated open cycle, producing one chronologically sortable list.
// Closed statements are authoritative and pass through unchanged
// (fonte "bill"); exactly one entry (fonte "calculado") represents the
// current month. Bills missing dueDate or totalAmount are skipped
// individually. Entries for the same month are NOT de-duplicated; the
// caller prefers fonte "bill" when it wants one value per month.
// Sorted most recent first.
func (s *BillingService) MergeInvoices(bills []models.Bill, txs []models.Transaction, referenceDate time.Time) []models.HybridInvoice {
	var invoices []models.HybridInvoice

	for _, bill := range bills {
		if bill.DueDate == "" || bill.TotalAmount == nil {
			s.tracef("fatura fechada ignorada: dueDate ou totalAmount ausente")
			continue
		}
		due, err := parseISODate(bill.DueDate)
		if err != nil {
			s.tracef("fatura fechada ignorada: dueDate inválido %q", bill.DueDate)
			continue
		}
		invoices = append(invoices, models.HybridInvoice{
			Mes:      monthLabel(due),
			Ano:      due.Year(),
			MesKey:   monthKey(due),
			Valor:    *bill.TotalAmount,
			Fonte:    models.FonteBill,
			Detalhes: bill.LineItems,
		})
	}

	cycle := s.OpenCycle(txs)
	total := 0.0
	for _, tx := range cycle {
		total += tx.Amount
	}
	invoices = append(invoices, models.HybridInvoice{
		Mes:        monthLabel(referenceDate),
		Ano:        referenceDate.Year(),
		MesKey:     monthKey(referenceDate),
		Valor:      total,
		Fonte:      models.FonteCalculado,
		Transacoes: cycle,
	})

	sort.SliceStable(invoices, func(i, j int) bool {
		if invoices[i].Ano != invoices[j].Ano {
			return invoices[i].Ano > invoices[j].Ano
		}
		return invoices[i].MesKey > invoices[j].MesKey
	})
	return invoices
}

// parseISODate accepts the provider's two date shapes: full RFC 3339
// timestamps and bare "YYYY-MM-DD" dates.
func parseISODate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
