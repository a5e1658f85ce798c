package models

import (
	"time"
)

// AccountType identifica o tipo de conta de origem da transação.
type AccountType string

const (
	AccountCredit   AccountType = "CREDIT"
	AccountChecking AccountType = "CHECKING"
	AccountSavings  AccountType = "SAVINGS"
)

// FlowKind is the meaning of an amount once the account type is taken
// into account. On a CREDIT account a positive amount increases the
// balance owed; on deposit accounts it is money coming in.
type FlowKind string

const (
	FlowExpense FlowKind = "EXPENSE" // credit card charge
	FlowPayment FlowKind = "PAYMENT" // statement payment or refund on a card
	FlowInflow  FlowKind = "INFLOW"
	FlowOutflow FlowKind = "OUTFLOW"
	FlowUnknown FlowKind = "UNKNOWN"
)

// Transaction is the raw record delivered by the open-finance provider.
// The engine only ever reads it.
type Transaction struct {
	ID           string      `json:"id"`
	Description  string      `json:"description"`
	Amount       float64     `json:"amount"`
	Date         time.Time   `json:"date"`
	Category     string      `json:"category,omitempty"`
	CurrencyCode string      `json:"currency_code,omitempty"`
	Status       string      `json:"status,omitempty"`
	AccountType  AccountType `json:"account_type"`
	AccountID    string      `json:"account_id,omitempty"`
}

// ClassifyAmount centralizes the sign convention. Every component that
// cares about the direction of money goes through here; nothing else in
// the codebase is allowed to reinterpret (or flip) a sign.
func ClassifyAmount(amount float64, accountType AccountType) FlowKind {
	switch accountType {
	case AccountCredit:
		if amount < 0 {
			return FlowPayment
		}
		return FlowExpense
	case AccountChecking, AccountSavings:
		if amount < 0 {
			return FlowOutflow
		}
		return FlowInflow
	default:
		return FlowUnknown
	}
}
