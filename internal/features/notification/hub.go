package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Hub tracks open websocket connections per user and pushes notifications to
// them as they are created. A user may have several tabs open, so connections
// are kept in a set.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]bool
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]bool),
		log:   log,
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][conn] = true
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Push sends the notification to every open connection of its user. Failed
// writes drop the connection; the notification is already persisted so
// nothing is lost.
func (h *Hub) Push(n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.log.Warn("failed to marshal notification", zap.Error(err))
		return
	}

	h.mu.RLock()
	set := h.conns[n.UserID]
	conns := make([]*websocket.Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("dropping websocket connection",
				zap.String("user_id", n.UserID), zap.Error(err))
			h.Unregister(n.UserID, conn)
			conn.Close()
		}
	}
}
