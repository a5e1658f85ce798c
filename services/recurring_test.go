package services

import (
	"math"
	"testing"
	"time"

	"github.com/openfatura/fatura-api/models"
)

func creditTx(description string, amount float64, date time.Time) models.Transaction {
	return models.Transaction{
		ID:          description + date.Format("2006-01-02"),
		Description: description,
		Amount:      amount,
		Date:        date,
		AccountType: models.AccountCredit,
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectRecurringThreeNonConsecutiveMonths(t *testing.T) {
	svc := NewBillingService()
	ref := day(2025, time.July, 15)

	txs := []models.Transaction{
		creditTx("Streaming Plus", 49.90, day(2025, time.January, 10)),
		creditTx("Streaming Plus", 50.10, day(2025, time.March, 11)),
		creditTx("Streaming Plus", 50.00, day(2025, time.June, 9)),
	}

	got := svc.DetectRecurring(txs, ref)
	if len(got) != 1 {
		t.Fatalf("expected 1 recurring charge, got %d", len(got))
	}
	r := got[0]
	if r.Frequency != 3 {
		t.Errorf("frequency = %d, want 3", r.Frequency)
	}
	if math.Abs(r.Amount-50.0) > 1e-9 {
		t.Errorf("mean amount = %v, want 50.0", r.Amount)
	}
	if !r.IsActive {
		t.Errorf("last occurrence one month before reference should be active")
	}
	if r.LastOccurrence != "2025-06" {
		t.Errorf("last occurrence = %q, want 2025-06", r.LastOccurrence)
	}
}

func TestDetectRecurringTwoMonthsIsNotEnough(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Academia Corpo", 89.90, day(2025, time.April, 5)),
		creditTx("Academia Corpo", 89.90, day(2025, time.May, 5)),
	}
	if got := svc.DetectRecurring(txs, day(2025, time.June, 1)); len(got) != 0 {
		t.Errorf("two months should not qualify, got %+v", got)
	}
}

func TestDetectRecurringUnstableAmounts(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Mercado Online", 50.00, day(2025, time.January, 3)),
		creditTx("Mercado Online", 50.00, day(2025, time.February, 3)),
		creditTx("Mercado Online", 80.00, day(2025, time.March, 3)),
	}
	if got := svc.DetectRecurring(txs, day(2025, time.April, 1)); len(got) != 0 {
		t.Errorf("amounts outside the tolerance should not qualify, got %+v", got)
	}
}

func TestDetectRecurringIgnoresInstallmentsAndNonExpenses(t *testing.T) {
	svc := NewBillingService()
	checking := models.Transaction{
		Description: "Assinatura Jornal",
		Amount:      30,
		Date:        day(2025, time.March, 1),
		AccountType: models.AccountChecking,
	}
	txs := []models.Transaction{
		// installment parcels repeat monthly but are never subscriptions
		creditTx("Sofá 1/12", 120.00, day(2025, time.January, 2)),
		creditTx("Sofá 2/12", 120.00, day(2025, time.February, 2)),
		creditTx("Sofá 3/12", 120.00, day(2025, time.March, 2)),
		// refunds are not expenses
		creditTx("Estorno Loja", -25.00, day(2025, time.January, 4)),
		creditTx("Estorno Loja", -25.00, day(2025, time.February, 4)),
		creditTx("Estorno Loja", -25.00, day(2025, time.March, 4)),
		checking,
	}
	if got := svc.DetectRecurring(txs, day(2025, time.April, 1)); len(got) != 0 {
		t.Errorf("expected no recurring charges, got %+v", got)
	}
}

func TestDetectRecurringOnePerMonthFirstSeen(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("App Música", 19.90, day(2025, time.January, 5)),
		creditTx("App Música", 19.90, day(2025, time.January, 25)), // second hit in January is dropped
		creditTx("App Música", 19.90, day(2025, time.February, 5)),
		creditTx("App Música", 19.90, day(2025, time.March, 5)),
	}
	got := svc.DetectRecurring(txs, day(2025, time.March, 20))
	if len(got) != 1 || got[0].Frequency != 3 {
		t.Fatalf("expected frequency 3 counting one observation per month, got %+v", got)
	}
}

func TestDetectRecurringActiveWindow(t *testing.T) {
	svc := NewBillingService()
	txs := []models.Transaction{
		creditTx("Clube do Livro", 34.90, day(2024, time.October, 1)),
		creditTx("Clube do Livro", 34.90, day(2024, time.November, 1)),
		creditTx("Clube do Livro", 34.90, day(2024, time.December, 1)),
	}

	// three months gone by: no longer active
	got := svc.DetectRecurring(txs, day(2025, time.March, 15))
	if len(got) != 1 {
		t.Fatalf("expected 1 recurring charge, got %d", len(got))
	}
	if got[0].IsActive {
		t.Errorf("charge last seen 3 months ago should be inactive")
	}

	// exactly two months gone by: still active
	got = svc.DetectRecurring(txs, day(2025, time.February, 15))
	if !got[0].IsActive {
		t.Errorf("charge last seen 2 months ago should still be active")
	}
}

func TestDetectRecurringSortedByAmountDescending(t *testing.T) {
	svc := NewBillingService()
	var txs []models.Transaction
	for m := time.January; m <= time.March; m++ {
		txs = append(txs,
			creditTx("Assinatura Barata", 9.90, day(2025, m, 1)),
			creditTx("Assinatura Cara", 99.90, day(2025, m, 2)),
		)
	}
	got := svc.DetectRecurring(txs, day(2025, time.March, 20))
	if len(got) != 2 {
		t.Fatalf("expected 2 recurring charges, got %d", len(got))
	}
	if got[0].Description != "Assinatura Cara" || got[1].Description != "Assinatura Barata" {
		t.Errorf("expected descending amount order, got %q then %q", got[0].Description, got[1].Description)
	}
}
