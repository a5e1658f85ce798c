package models

// ProjectionBreakdown splits a projected month's total by origin.
type ProjectionBreakdown struct {
	InstallmentsTotal float64 `json:"installments_total"`
	RecurringTotal    float64 `json:"recurring_total"`
}

// MonthlyProjection is the forecast for one calendar month. For every
// month except the current one, Total equals the breakdown sum. For the
// current month Total is the reconstructed open-cycle amount, which also
// carries one-off charges the projector cannot see.
type MonthlyProjection struct {
	Month        string                  `json:"month"`     // display label, ex: "março de 2026"
	MonthKey     string                  `json:"month_key"` // "YYYY-MM"
	Total        float64                 `json:"total"`
	Installments []InstallmentProjection `json:"installments"`
	Recurring    []RecurringTransaction  `json:"recurring"`
	Breakdown    ProjectionBreakdown     `json:"breakdown"`
}

// ProjectionResult is what the API hands to the dashboard: the open
// month plus the future horizon.
type ProjectionResult struct {
	CurrentMonth MonthlyProjection   `json:"currentMonth"`
	FutureMonths []MonthlyProjection `json:"futureMonths"`
}

// Bill is a closed statement as delivered by the provider. TotalAmount
// is a pointer so a missing field can be told apart from zero; bills
// missing either required field are skipped, never an error.
type Bill struct {
	DueDate     string     `json:"dueDate"`
	TotalAmount *float64   `json:"totalAmount"`
	LineItems   []BillLine `json:"lineItems,omitempty"`
}

// BillLine is one line item of a closed statement.
type BillLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Fonte values for HybridInvoice.
const (
	FonteBill      = "bill"      // authoritative closed statement
	FonteCalculado = "calculado" // reconstructed open cycle
)

// HybridInvoice é uma fatura na linha do tempo: fechada (fonte "bill")
// ou o ciclo aberto calculado (fonte "calculado").
type HybridInvoice struct {
	Mes        string        `json:"mes"`
	Ano        int           `json:"ano"`
	MesKey     string        `json:"mesKey"`
	Valor      float64       `json:"valor"`
	Fonte      string        `json:"fonte"`
	Transacoes []Transaction `json:"transacoes,omitempty"`
	Detalhes   []BillLine    `json:"detalhes,omitempty"`
}
