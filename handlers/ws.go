package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler keeps dashboards live: after a sync finishes, every client
// watching that account is told to refetch its projections.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// keep-alive for cloud hosting that drops idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		accountID, _ := s.Get("account_id")
		log.Printf("🔌 Client disconnected from account: %v", accountID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and ties the session to an account.
func (h *WSHandler) HandleWS(c *gin.Context) {
	accountID := c.Param("accountId")

	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"account_id": accountID,
	}); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastBillingUpdate notifies every session watching accountID that
// fresh data landed.
func (h *WSHandler) BroadcastBillingUpdate(accountID string, txCount, billCount int) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":         "billing_updated",
		"account_id":   accountID,
		"transactions": txCount,
		"bills":        billCount,
		"at":           time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	h.M.BroadcastFilter(payload, func(s *melody.Session) bool {
		id, _ := s.Get("account_id")
		return id == accountID
	})
}
