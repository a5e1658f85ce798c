package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openfatura/fatura-api/middleware"
	"github.com/openfatura/fatura-api/services"
	"github.com/openfatura/fatura-api/utils"
)

// SyncHandler pulls fresh data from the open-finance provider and
// persists it, invalidating caches and notifying websocket clients.
type SyncHandler struct {
	Provider *services.OpenFinanceService
	Store    *services.TransactionService
	Cache    *services.CacheService
	WS       *WSHandler
}

func NewSyncHandler(store *services.TransactionService, cache *services.CacheService, ws *WSHandler) *SyncHandler {
	return &SyncHandler{
		Provider: services.NewOpenFinanceService(),
		Store:    store,
		Cache:    cache,
		WS:       ws,
	}
}

// providerKey reuses the sealed session stored for the account while it
// is still valid; only when none exists does it authenticate again and
// persist the new session, token sealed at rest.
func (h *SyncHandler) providerKey(ctx context.Context, accountID string) (string, error) {
	apiKey, err := h.Store.GetConnectionToken(ctx, accountID)
	if err != nil {
		utils.Warnf("falha ao ler sessão do provedor de %s: %v", accountID, err)
	}
	if apiKey != "" {
		utils.Debugf("reutilizando sessão do provedor para %s", accountID)
		return apiKey, nil
	}

	apiKey, expiresAt, err := h.Provider.Authenticate(ctx)
	if err != nil {
		return "", err
	}
	if err := h.Store.SaveConnection(ctx, accountID, "openfinance", apiKey, expiresAt); err != nil {
		// next sync just authenticates again
		utils.Warnf("falha ao guardar sessão do provedor de %s: %v", accountID, err)
	}
	return apiKey, nil
}

// SyncAccount busca transações e faturas fechadas no provedor e grava
// tudo localmente.
func (h *SyncHandler) SyncAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID := c.Param("accountId")
	ctx := c.Request.Context()

	apiKey, err := h.providerKey(ctx, accountID)
	if err != nil {
		utils.Errorf("Provider auth failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Provider authentication failed"})
		return
	}

	// full lookback: the projection engine needs installments that
	// started many months ago
	from := time.Now().AddDate(-2, 0, 0)
	txs, err := h.Provider.ListTransactions(ctx, apiKey, accountID, from)
	if err != nil {
		utils.Errorf("Provider transactions failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	bills, err := h.Provider.ListBills(ctx, apiKey, accountID)
	if err != nil {
		utils.Errorf("Provider bills failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch bills"})
		return
	}

	if err := h.Store.SaveTransactions(ctx, accountID, txs); err != nil {
		utils.Errorf("Failed to persist transactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist transactions"})
		return
	}
	if err := h.Store.SaveBills(ctx, accountID, bills); err != nil {
		utils.Errorf("Failed to persist bills: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist bills"})
		return
	}

	if err := h.Store.RecordSyncRun(ctx, accountID, len(txs), len(bills), "ok"); err != nil {
		utils.Warnf("Failed to record sync run: %v", err)
	}

	if h.Cache != nil {
		h.Cache.Invalidate(ctx, accountID)
	}
	if h.WS != nil {
		h.WS.BroadcastBillingUpdate(accountID, len(txs), len(bills))
	}

	utils.Infof("Sync by %s finished for %s: %d transactions, %d bills", userID, accountID, len(txs), len(bills))
	c.JSON(http.StatusOK, gin.H{
		"account_id":   accountID,
		"transactions": len(txs),
		"bills":        len(bills),
	})
}
