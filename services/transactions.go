package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openfatura/fatura-api/models"
	"github.com/openfatura/fatura-api/utils"
)

// TransactionService persists what the provider delivers, so the
// analysis endpoints can run without hitting the provider every time.
type TransactionService struct {
	db *sql.DB
}

func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

// SaveTransactions upserts a sync batch.
func (s *TransactionService) SaveTransactions(ctx context.Context, accountID string, txs []models.Transaction) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO transactions (
				external_id, account_id, description, amount, date,
				category, currency_code, status, account_type, synced_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (account_id, external_id)
			DO UPDATE SET
				description = EXCLUDED.description,
				amount = EXCLUDED.amount,
				date = EXCLUDED.date,
				category = EXCLUDED.category,
				status = EXCLUDED.status,
				synced_at = NOW()
		`
		for _, t := range txs {
			externalID := t.ID
			if externalID == "" {
				externalID = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx, query,
				externalID, accountID, t.Description, t.Amount, t.Date,
				t.Category, t.CurrencyCode, t.Status, string(t.AccountType),
			); err != nil {
				return fmt.Errorf("failed to save transaction %s: %w", externalID, err)
			}
		}
		return nil
	})
}

// GetTransactions loads the full stored history for an account, oldest
// first. The engine needs the whole history in memory: projecting
// future parcels requires seeing installments that started many months
// ago.
func (s *TransactionService) GetTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	query := `
		SELECT external_id, description, amount, date,
			COALESCE(category, ''), COALESCE(currency_code, ''),
			COALESCE(status, ''), account_type
		FROM transactions
		WHERE account_id = $1
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var accountType string
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.Date,
			&t.Category, &t.CurrencyCode, &t.Status, &accountType); err != nil {
			return nil, err
		}
		t.AccountType = models.AccountType(accountType)
		t.AccountID = accountID
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SaveBills upserts the provider's closed statements.
func (s *TransactionService) SaveBills(ctx context.Context, accountID string, bills []models.Bill) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO closed_bills (account_id, due_date, total_amount, line_items, synced_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (account_id, due_date)
			DO UPDATE SET
				total_amount = EXCLUDED.total_amount,
				line_items = EXCLUDED.line_items,
				synced_at = NOW()
		`
		for _, bill := range bills {
			// incomplete bills are not worth storing; the merge step
			// would skip them anyway
			if bill.DueDate == "" || bill.TotalAmount == nil {
				continue
			}
			items, err := json.Marshal(bill.LineItems)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, accountID, bill.DueDate, *bill.TotalAmount, items); err != nil {
				return fmt.Errorf("failed to save bill %s: %w", bill.DueDate, err)
			}
		}
		return nil
	})
}

// GetBills loads the stored closed statements for an account.
func (s *TransactionService) GetBills(ctx context.Context, accountID string) ([]models.Bill, error) {
	query := `
		SELECT due_date, total_amount, line_items
		FROM closed_bills
		WHERE account_id = $1
		ORDER BY due_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var due time.Time
		var total float64
		var rawItems []byte
		if err := rows.Scan(&due, &total, &rawItems); err != nil {
			return nil, err
		}
		bill := models.Bill{
			DueDate:     due.Format("2006-01-02"),
			TotalAmount: &total,
		}
		if err := json.Unmarshal(rawItems, &bill.LineItems); err == nil {
			bills = append(bills, bill)
		} else {
			bills = append(bills, models.Bill{DueDate: bill.DueDate, TotalAmount: bill.TotalAmount})
		}
	}
	return bills, rows.Err()
}

// SaveConnection stores the provider session for an account, token
// sealed at rest.
func (s *TransactionService) SaveConnection(ctx context.Context, accountID, provider, accessToken string, expiresAt time.Time) error {
	sealed, err := utils.SealToken(accessToken)
	if err != nil {
		return fmt.Errorf("failed to seal provider token: %w", err)
	}
	query := `
		INSERT INTO provider_connections (account_id, provider, access_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET
			provider = EXCLUDED.provider,
			access_token = EXCLUDED.access_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	_, err = s.db.ExecContext(ctx, query, accountID, provider, sealed, expiresAt)
	return err
}

// GetConnectionToken returns the unsealed provider session for an
// account while it is still valid. A missing, expired or undecryptable
// session (key rotation leaves such rows behind) comes back empty, not
// as an error; the caller just authenticates again.
func (s *TransactionService) GetConnectionToken(ctx context.Context, accountID string) (string, error) {
	var sealed string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, expires_at FROM provider_connections WHERE account_id = $1`,
		accountID,
	).Scan(&sealed, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !time.Now().Before(expiresAt) {
		return "", nil
	}

	token, err := utils.OpenToken(sealed)
	if err != nil {
		utils.Warnf("sessão do provedor de %s não pôde ser aberta: %v", accountID, err)
		return "", nil
	}
	return token, nil
}

// RecordSyncRun registra o resultado de uma sincronização.
func (s *TransactionService) RecordSyncRun(ctx context.Context, accountID string, txCount, billCount int, status string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (account_id, transactions_count, bills_count, status) VALUES ($1, $2, $3, $4)`,
		accountID, txCount, billCount, status,
	)
	return err
}
