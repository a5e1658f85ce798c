package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// Handlers with a nil store would panic on any data access, so a 401
// here proves the subject check runs before anything else.
func unauthenticatedContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Params = gin.Params{{Key: "accountId", Value: "acc-1"}}
	return c, rec
}

func TestBillingHandlersRequireSubject(t *testing.T) {
	h := &BillingHandler{}

	cases := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"recorrentes", h.GetRecurring},
		{"fatura atual", h.GetCurrentInvoice},
		{"projeções", h.GetProjections},
		{"linha do tempo", h.GetInvoices},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := unauthenticatedContext(t)
			tc.handler(c)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestSyncAccountRequiresSubject(t *testing.T) {
	h := &SyncHandler{}

	c, rec := unauthenticatedContext(t)
	h.SyncAccount(c)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
