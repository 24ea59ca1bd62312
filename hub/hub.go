package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Message struct {
	Event   string      `json:"event"`
	EventID string      `json:"event_id"`
	Data    interface{} `json:"data"`
}

// Hub holds the websocket clients watching each tenant's events and fans
// arrangement changes out to them.
type Hub struct {
	clients map[string]map[*websocket.Conn]struct{} // tenant/event -> conns
	mutex   sync.Mutex
	log     logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]struct{}),
		log:     log,
	}
}

func key(tenantID, eventID string) string {
	return tenantID + "/" + eventID
}

// Register subscribes conn to the tenant's event.
func (h *Hub) Register(tenantID, eventID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	k := key(tenantID, eventID)
	if h.clients[k] == nil {
		h.clients[k] = make(map[*websocket.Conn]struct{})
	}
	h.clients[k][conn] = struct{}{}
}

// Unregister drops conn and closes it.
func (h *Hub) Unregister(tenantID, eventID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	k := key(tenantID, eventID)
	delete(h.clients[k], conn)
	if len(h.clients[k]) == 0 {
		delete(h.clients, k)
	}
	conn.Close()
}

func (h *Hub) Clients(tenantID, eventID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[key(tenantID, eventID)])
}

// Broadcast sends one message to every client of the tenant's event.
func (h *Hub) Broadcast(tenantID, eventID, event string, data interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns := h.clients[key(tenantID, eventID)]
	if len(conns) == 0 {
		return
	}

	payload, err := json.Marshal(Message{Event: event, EventID: eventID, Data: data})
	if err != nil {
		h.log.WithError(err).Error("marshal hub message")
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.WithError(err).WithField("event_id", eventID).Warn("send hub message")
		}
	}
}
