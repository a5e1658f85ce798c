package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openfatura/fatura-api/middleware"
	"github.com/openfatura/fatura-api/services"
	"github.com/openfatura/fatura-api/utils"
)

// BillingHandler expõe o motor de faturas: recorrências, ciclo aberto,
// projeções e a linha do tempo híbrida. Cache is optional; everything
// works without it, just slower.
type BillingHandler struct {
	Billing *services.BillingService
	Store   *services.TransactionService
	Cache   *services.CacheService
}

func NewBillingHandler(store *services.TransactionService, cache *services.CacheService) *BillingHandler {
	return &BillingHandler{
		Billing: services.NewBillingServiceWith(services.DefaultBillingConfig(), utils.Debugf),
		Store:   store,
		Cache:   cache,
	}
}

// GetRecurring lista as cobranças recorrentes detectadas.
func (h *BillingHandler) GetRecurring(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountID := c.Param("accountId")

	txs, err := h.Store.GetTransactions(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	recurring := h.Billing.DetectRecurring(txs, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"recurring":  recurring,
	})
}

// GetCurrentInvoice devolve o total do ciclo aberto e suas transações.
func (h *BillingHandler) GetCurrentInvoice(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountID := c.Param("accountId")

	txs, err := h.Store.GetTransactions(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	cycle := h.Billing.OpenCycle(txs)
	total := h.Billing.CurrentInvoiceTotal(txs)
	utils.Debugf("ciclo aberto de %s: %s", accountID, utils.MaskAmount(total))
	c.JSON(http.StatusOK, gin.H{
		"account_id":   accountID,
		"total":        total,
		"transactions": cycle,
	})
}

// GetProjections devolve o mês atual mais o horizonte futuro,
// read-through no cache.
func (h *BillingHandler) GetProjections(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountID := c.Param("accountId")

	months := 0
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 36 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 36"})
			return
		}
		months = parsed
	}

	if h.Cache != nil {
		if cached, ok := h.Cache.GetProjections(c.Request.Context(), accountID, months); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	txs, err := h.Store.GetTransactions(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	result := h.Billing.ProjectFuture(txs, months, time.Now())
	if h.Cache != nil {
		h.Cache.SetProjections(c.Request.Context(), accountID, months, result)
	}
	c.JSON(http.StatusOK, result)
}

// GetInvoices devolve a linha do tempo híbrida: faturas fechadas do
// provedor sobrepostas ao ciclo aberto calculado.
func (h *BillingHandler) GetInvoices(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	accountID := c.Param("accountId")
	ctx := c.Request.Context()

	txs, err := h.Store.GetTransactions(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}
	bills, err := h.Store.GetBills(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bills"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": accountID,
		"invoices":   h.Billing.MergeInvoices(bills, txs, time.Now()),
	})
}
