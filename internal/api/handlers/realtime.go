package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/ws"
)

// HandleRealtime handles GET /ws: upgrades operator clients onto the event
// hub. Authentication happens in the operator middleware before this runs.
func HandleRealtime(hub *ws.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws.ServeWS(hub, c.Writer, c.Request, logger)
	}
}
