package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const readLimit = 1024

// WSHandler апгрейдит HTTP-запрос в WebSocket и цепляет подписчика к хабу.
type WSHandler struct {
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Подписка публичная, origin не ограничиваем
				return true
			},
		},
	}
}

// ServeHTTP — GET /ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Attach(ws)
	go h.readPump(sub, ws)
}

// readPump вычитывает входящие фреймы только ради детекции разрыва:
// подписчики ничего осмысленного не присылают. Дедлайн чтения
// продлевается каждым pong на ping из writePump; молчащее, но живое
// соединение дедлайн не задевает.
func (h *WSHandler) readPump(sub *Subscriber, ws *websocket.Conn) {
	defer h.hub.Detach(sub)

	pongWait := h.hub.pongWait
	ws.SetReadLimit(readLimit)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.String("id", sub.ID), zap.Error(err))
			}
			return
		}
	}
}
