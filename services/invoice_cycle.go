package services

import (
	"sort"
	"strings"

	"github.com/openfatura/fatura-api/models"
)

// isStatementPayment decides whether a CREDIT transaction looks like a
// statement payment: a negative amount that is either large (above the
// configured threshold) or carries a payment keyword in its
// description. Bank feeds deliver a running ledger, not discrete
// statements, so the most recent such transaction approximates the last
// invoice payment.
func (s *BillingService) isStatementPayment(tx models.Transaction) bool {
	if models.ClassifyAmount(tx.Amount, tx.AccountType) != models.FlowPayment {
		return false
	}
	if -tx.Amount > s.cfg.PaymentAmountThreshold {
		return true
	}
	desc := strings.ToLower(tx.Description)
	for _, kw := range s.cfg.PaymentKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// OpenCycle returns the CREDIT transactions of the current open invoice
// cycle, in chronological order: everything strictly after the most
// recent statement payment. When no payment is found the whole CREDIT
// history is the open cycle, which over-approximates but never
// under-counts.
func (s *BillingService) OpenCycle(txs []models.Transaction) []models.Transaction {
	var credit []models.Transaction
	for _, tx := range txs {
		if tx.AccountType == models.AccountCredit {
			credit = append(credit, tx)
		}
	}
	sort.SliceStable(credit, func(i, j int) bool {
		return credit[i].Date.Before(credit[j].Date)
	})

	boundary := -1
	for i := len(credit) - 1; i >= 0; i-- {
		if s.isStatementPayment(credit[i]) {
			boundary = i
			s.tracef("pagamento de fatura encontrado: %s %.2f em %s",
				credit[i].Description, credit[i].Amount, credit[i].Date.Format("2006-01-02"))
			break
		}
	}
	if boundary == -1 {
		s.tracef("nenhum pagamento de fatura encontrado; ciclo aberto cobre todo o histórico (%d transações)", len(credit))
	}
	return credit[boundary+1:]
}

// CurrentInvoiceTotal is the signed sum of the open cycle: expenses
// add, refunds and partial credits subtract. Signs are never flipped.
// No CREDIT transactions means an open invoice of zero.
func (s *BillingService) CurrentInvoiceTotal(txs []models.Transaction) float64 {
	total := 0.0
	for _, tx := range s.OpenCycle(txs) {
		total += tx.Amount
	}
	return total
}
