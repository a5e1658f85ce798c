package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/openfatura/fatura-api/handlers"
	"github.com/openfatura/fatura-api/services"
)

// SetupBillingRoutes registers the invoice engine endpoints.
func SetupBillingRoutes(rg *gin.RouterGroup, db *sql.DB, cache *services.CacheService, ws *handlers.WSHandler) {
	store := services.NewTransactionService(db)

	billing := handlers.NewBillingHandler(store, cache)
	sync := handlers.NewSyncHandler(store, cache, ws)

	rg.POST("/billing/:accountId/sync", sync.SyncAccount)
	rg.GET("/billing/:accountId/recurring", billing.GetRecurring)
	rg.GET("/billing/:accountId/invoice/current", billing.GetCurrentInvoice)
	rg.GET("/billing/:accountId/projections", billing.GetProjections)
	rg.GET("/billing/:accountId/invoices", billing.GetInvoices)
}
