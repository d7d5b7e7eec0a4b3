package handlers

import (
	"log"
	"net/http"

	"github.com/cmsgraham/secret-santa/internal/services"
	"github.com/cmsgraham/secret-santa/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	eventService *services.EventService
	hub          *ws.Hub
}

func NewWSHandler(eventService *services.EventService, hub *ws.Hub) *WSHandler {
	return &WSHandler{eventService: eventService, hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleEventWebSocket godoc
// @Summary      WebSocket connection for event updates
// @Description  Receive wall posts, registrations and draw completion live
// @Tags         websocket
// @Param        code path string true "Event code"
// @Router       /ws/events/{code} [get]
func (h *WSHandler) HandleEventWebSocket(c *gin.Context) {
	event, err := h.eventService.GetEventByCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddConnection(event.ID, conn)
	defer h.hub.RemoveConnection(event.ID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
