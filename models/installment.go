package models

import (
	"time"
)

// InstallmentInfo is the result of parsing a "parcela" marker (X/Y) out
// of a transaction description.
type InstallmentInfo struct {
	HasInstallment bool `json:"has_installment"`
	Current        int  `json:"current"`
	Total          int  `json:"total"`
	Remaining      int  `json:"remaining"`
}

// InstallmentSeries representa uma compra parcelada: one real purchase
// spread over Total monthly charges. It is rebuilt from scratch on every
// analysis; nothing persists it.
type InstallmentSeries struct {
	BaseDescription string      `json:"base_description"`
	Amount          float64     `json:"amount"` // per-installment, fixed across the series
	Total           int         `json:"total"`
	Current         int         `json:"current"` // highest parcel observed so far
	FirstParcelDate time.Time   `json:"first_parcel_date"`
	Transaction     Transaction `json:"transaction"` // most recent observation
}

// Remaining is how many monthly charges are still due after the last
// observed parcel.
func (s *InstallmentSeries) Remaining() int {
	return s.Total - s.Current
}

// InstallmentProjection is one projected parcel inside a future month.
type InstallmentProjection struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Parcel      int     `json:"parcel"`
	Total       int     `json:"total"`
}
