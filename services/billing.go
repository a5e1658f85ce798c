package services

import (
	"fmt"
	"time"
)

// TraceFunc receives diagnostic messages from the engine. It is
// optional; the engine itself never logs.
type TraceFunc func(format string, args ...interface{})

// BillingConfig carries the tuned heuristics of the invoice engine.
// These are empirical values, not hard invariants, so they stay
// configurable.
type BillingConfig struct {
	// A negative CREDIT amount larger than this magnitude is assumed to
	// be a statement payment even without a matching keyword.
	PaymentAmountThreshold float64
	// Lowercased substrings that mark a negative CREDIT amount as a
	// statement payment.
	PaymentKeywords []string
	// Minimum distinct calendar months before a charge counts as
	// recurring.
	RecurringMinMonths int
	// Symmetric relative tolerance between each observation and the
	// group mean.
	RecurringTolerance float64
	// A recurring charge is still active if its last occurrence is at
	// most this many calendar months old.
	RecurringActiveWindowMonths int
	// Two observations belong to the same installment series only if
	// their inferred first-parcel dates agree within this window.
	SeriesDateTolerance time.Duration
	// Projection horizon when the caller does not pick one.
	DefaultHorizonMonths int
}

// DefaultBillingConfig returns the tuning used in production.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		PaymentAmountThreshold:      1000,
		PaymentKeywords:             []string{"pagamento", "fatura", "pago", "pgt"},
		RecurringMinMonths:          3,
		RecurringTolerance:          0.05,
		RecurringActiveWindowMonths: 2,
		SeriesDateTolerance:         24 * time.Hour,
		DefaultHorizonMonths:        12,
	}
}

// BillingService reconstructs and projects credit-card invoices from a
// raw transaction stream. It is stateless and side-effect free: no DB,
// no network, no clock. Every entry point that depends on "now" takes
// an explicit reference date.
type BillingService struct {
	cfg   BillingConfig
	trace TraceFunc
}

func NewBillingService() *BillingService {
	return NewBillingServiceWith(DefaultBillingConfig(), nil)
}

func NewBillingServiceWith(cfg BillingConfig, trace TraceFunc) *BillingService {
	if cfg.DefaultHorizonMonths <= 0 {
		cfg.DefaultHorizonMonths = 12
	}
	return &BillingService{cfg: cfg, trace: trace}
}

func (s *BillingService) tracef(format string, args ...interface{}) {
	if s.trace != nil {
		s.trace(format, args...)
	}
}

// meses por extenso, para os rótulos exibidos no dashboard
var mesesPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", mesesPT[t.Month()-1], t.Year())
}

// monthsBetween counts whole calendar months from b's month to a's
// month, ignoring the day.
func monthsBetween(a, b time.Time) int {
	return (a.Year()-b.Year())*12 + int(a.Month()-b.Month())
}

// monthStart truncates t to the first instant of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
