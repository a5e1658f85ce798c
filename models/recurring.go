package models

// RecurringTransaction is a subscription-like charge: same description,
// stable amount, showing up across distinct months on the card.
type RecurringTransaction struct {
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`    // mean of the observed amounts
	Frequency      int     `json:"frequency"` // distinct months observed
	IsActive       bool    `json:"is_active"`
	LastOccurrence string  `json:"last_occurrence"` // "YYYY-MM"
}
