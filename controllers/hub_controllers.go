package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/wedding-seating/hub"
	"github.com/yeremiapane/wedding-seating/middlewares"
	"github.com/yeremiapane/wedding-seating/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the token in the query string authenticates the client
	},
}

type HubController struct {
	Hub      *hub.Hub
	Sessions *services.SessionManager
}

func NewHubController(h *hub.Hub, sessions *services.SessionManager) *HubController {
	return &HubController{Hub: h, Sessions: sessions}
}

// Watch -> websocket stream of arrangement changes for one event
func (hc *HubController) Watch(c *gin.Context) {
	tenantID := c.GetString(middlewares.ContextTenantID)
	eventID := c.Param("event_id")
	if _, err := hc.Sessions.Open(c.Request.Context(), tenantID, eventID); err != nil {
		respondServiceError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	hc.Hub.Register(tenantID, eventID, ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	hc.Hub.Unregister(tenantID, eventID, ws)
}
