package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openfatura/fatura-api/models"
	"github.com/openfatura/fatura-api/utils"
)

// OpenFinanceService fala com o agregador open finance que entrega as
// transações e as faturas fechadas. The engine trusts this data as-is;
// the only cleanup done here is dropping records whose date cannot be
// parsed, so downstream code never sees a zero date.
type OpenFinanceService struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Client       *http.Client
}

func NewOpenFinanceService() *OpenFinanceService {
	baseURL := os.Getenv("OPENFINANCE_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openfinance.example.com/v1"
	}
	return &OpenFinanceService{
		ClientID:     os.Getenv("OPENFINANCE_CLIENT_ID"),
		ClientSecret: os.Getenv("OPENFINANCE_CLIENT_SECRET"),
		BaseURL:      baseURL,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate troca as credenciais por um api key de curta duração e
// informa até quando ele vale, so callers can persist and reuse the
// session instead of re-authenticating on every sync.
func (s *OpenFinanceService) Authenticate(ctx context.Context) (string, time.Time, error) {
	payload := map[string]string{
		"clientId":     s.ClientID,
		"clientSecret": s.ClientSecret,
	}

	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/auth", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("provider auth failed: status %d", resp.StatusCode)
	}

	var result struct {
		APIKey    string `json:"apiKey"`
		ExpiresIn int    `json:"expiresIn"` // seconds
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", time.Time{}, err
	}

	// providers that omit the lifetime get a conservative one
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = 600
	}
	expiresAt := time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return result.APIKey, expiresAt, nil
}

// providerTransaction is the provider's wire shape; dates come as ISO
// strings.
type providerTransaction struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Category     string  `json:"category"`
	CurrencyCode string  `json:"currencyCode"`
	Status       string  `json:"status"`
	AccountType  string  `json:"accountType"`
}

// ListTransactions retorna o histórico de transações de uma conta a
// partir de `from`. Records with malformed dates are dropped with a
// warning; a missing accountType is kept (the engine just excludes the
// record from CREDIT-only paths).
func (s *OpenFinanceService) ListTransactions(ctx context.Context, apiKey, accountID string, from time.Time) ([]models.Transaction, error) {
	url := fmt.Sprintf("%s/accounts/%s/transactions?from=%s", s.BaseURL, accountID, from.Format("2006-01-02"))
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider transactions failed: status %d", resp.StatusCode)
	}

	var result struct {
		Results []providerTransaction `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(result.Results))
	for _, raw := range result.Results {
		date, err := parseISODate(raw.Date)
		if err != nil {
			utils.Warnf("transação %s descartada: data inválida %q", raw.ID, raw.Date)
			continue
		}
		txs = append(txs, models.Transaction{
			ID:           raw.ID,
			Description:  raw.Description,
			Amount:       raw.Amount,
			Date:         date,
			Category:     raw.Category,
			CurrencyCode: raw.CurrencyCode,
			Status:       raw.Status,
			AccountType:  models.AccountType(raw.AccountType),
			AccountID:    accountID,
		})
	}
	return txs, nil
}

// ListBills retorna as faturas já fechadas da conta. No validation is
// applied here; the merge step skips malformed entries individually.
func (s *OpenFinanceService) ListBills(ctx context.Context, apiKey, accountID string) ([]models.Bill, error) {
	url := fmt.Sprintf("%s/accounts/%s/bills", s.BaseURL, accountID)
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider bills failed: status %d", resp.StatusCode)
	}

	var result struct {
		Results []models.Bill `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
