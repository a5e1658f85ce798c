package models

import "testing"

func TestClassifyAmount(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		accountType AccountType
		want        FlowKind
	}{
		{"credit charge", 120.50, AccountCredit, FlowExpense},
		{"credit refund or payment", -2000, AccountCredit, FlowPayment},
		{"checking inflow", 5000, AccountChecking, FlowInflow},
		{"checking outflow", -300, AccountChecking, FlowOutflow},
		{"savings inflow", 100, AccountSavings, FlowInflow},
		{"savings outflow", -50, AccountSavings, FlowOutflow},
		{"missing account type", 10, "", FlowUnknown},
		{"unknown account type", 10, "WALLET", FlowUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAmount(tt.amount, tt.accountType); got != tt.want {
				t.Errorf("ClassifyAmount(%v, %q) = %q, want %q", tt.amount, tt.accountType, got, tt.want)
			}
		})
	}
}
