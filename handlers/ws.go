package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"pivabalance-api/utils"
)

// WSHandler pushes recalculation signals to the owning user's open sessions:
// whenever invoices, costs or settings change, connected dashboards refresh
// their tax summary without polling.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 64 * 1024

	// Keep-alive, needed behind cloud proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		if id, ok := userID.(string); ok {
			utils.LogWebSocket("disconnected", id)
		}
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeError("WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// Serve upgrades the request and tags the session with the user's id. Runs
// behind AuthMiddleware, which rejects unauthenticated callers first.
func (h *WSHandler) Serve(c *gin.Context, userID string) {
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"user_id": userID,
	}); err != nil {
		utils.SafeError("Failed to upgrade websocket: %v", err)
		return
	}
	utils.LogWebSocket("connected", userID)
}

// NotifyUser broadcasts an update signal to every session of one user.
func (h *WSHandler) NotifyUser(userID, updateType string) {
	msg, err := json.Marshal(map[string]string{"type": updateType})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get("user_id")
		return exists && id == userID
	})
	if err != nil {
		utils.SafeError("Error broadcasting to user %s: %v", utils.MaskID(userID), err)
	}
}
