package services

import (
	"math"
	"testing"
	"time"

	"github.com/openfatura/fatura-api/models"
)

func TestCurrentInvoiceTotalSignPreservation(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Compra mercado", 100, day(2025, time.January, 1)),
		creditTx("Estorno parcial", -50, day(2025, time.January, 5)),
		creditTx("Pagamento fatura", -2000, day(2025, time.January, 10)),
		creditTx("Padaria", 30, day(2025, time.January, 15)),
	}
	if got := svc.CurrentInvoiceTotal(txs); math.Abs(got-30) > 1e-9 {
		t.Errorf("open invoice total = %v, want 30 (only transactions after the payment)", got)
	}
}

func TestOpenCycleKeywordPaymentBelowThreshold(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Restaurante", 80, day(2025, time.February, 1)),
		// magnitude under 1000, but the description marks it as payment
		creditTx("PGT DEB AUTOM", -350, day(2025, time.February, 3)),
		creditTx("Farmácia", 45, day(2025, time.February, 8)),
	}
	cycle := svc.OpenCycle(txs)
	if len(cycle) != 1 || cycle[0].Description != "Farmácia" {
		t.Fatalf("expected only the post-payment charge in the cycle, got %+v", cycle)
	}
}

func TestOpenCycleLargeNegativeWithoutKeyword(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Supermercado", 200, day(2025, time.March, 1)),
		creditTx("TED recebida", -1500.50, day(2025, time.March, 5)),
		creditTx("Posto", 150, day(2025, time.March, 9)),
	}
	if got := svc.CurrentInvoiceTotal(txs); math.Abs(got-150) > 1e-9 {
		t.Errorf("large negative amount should bound the cycle, total = %v, want 150", got)
	}
}

func TestOpenCycleNoPaymentFound(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Compra A", 100, day(2025, time.January, 2)),
		creditTx("Estorno pequeno", -40, day(2025, time.January, 8)),
		creditTx("Compra B", 60, day(2025, time.February, 1)),
	}
	// no boundary: the whole history is one open cycle
	if got := svc.CurrentInvoiceTotal(txs); math.Abs(got-120) > 1e-9 {
		t.Errorf("total without payment boundary = %v, want 120", got)
	}
}

func TestOpenCycleIgnoresOtherAccounts(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		{Description: "Salário", Amount: 5000, Date: day(2025, time.April, 1), AccountType: models.AccountChecking},
		{Description: "Poupança", Amount: -300, Date: day(2025, time.April, 2), AccountType: models.AccountSavings},
		creditTx("Compra", 75, day(2025, time.April, 3)),
	}
	if got := svc.CurrentInvoiceTotal(txs); math.Abs(got-75) > 1e-9 {
		t.Errorf("only CREDIT transactions belong to the invoice, total = %v, want 75", got)
	}
}

func TestCurrentInvoiceTotalEmpty(t *testing.T) {
	svc := NewBillingService()
	if got := svc.CurrentInvoiceTotal(nil); got != 0 {
		t.Errorf("empty history should yield 0, got %v", got)
	}
}

func TestOpenCycleSortsBeforeScanning(t *testing.T) {
	svc := NewBillingService()
	// delivered out of order by the provider
	txs := []models.Transaction{
		creditTx("Padaria", 30, day(2025, time.January, 15)),
		creditTx("Pagamento fatura", -2000, day(2025, time.January, 10)),
		creditTx("Compra mercado", 100, day(2025, time.January, 1)),
	}
	cycle := svc.OpenCycle(txs)
	if len(cycle) != 1 || cycle[0].Description != "Padaria" {
		t.Fatalf("expected chronological reconstruction regardless of input order, got %+v", cycle)
	}
}

func TestOpenCycleConfigurableThreshold(t *testing.T) {
	cfg := DefaultBillingConfig()
	cfg.PaymentAmountThreshold = 100
	svc := NewBillingServiceWith(cfg, nil)

	txs := []models.Transaction{
		creditTx("Compra", 90, day(2025, time.May, 1)),
		creditTx("Estorno grande", -150, day(2025, time.May, 3)),
		creditTx("Compra depois", 20, day(2025, time.May, 7)),
	}
	if got := svc.CurrentInvoiceTotal(txs); math.Abs(got-20) > 1e-9 {
		t.Errorf("lowered threshold should bound the cycle at -150, total = %v, want 20", got)
	}
}
