// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"greencart-ops-api/internal/api/middleware"
	"greencart-ops-api/internal/auth"
	"greencart-ops-api/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Longest silence tolerated from a client before the connection is dropped.
const pongWait = 60 * time.Second

type WebSocketHandler struct {
	Hub         *socket.Hub
	Sessions    *auth.SessionManager
	CookieName  string
	FrontendURL string
	Logger      *zap.Logger
}

func (h *WebSocketHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.FrontendURL == "" || strings.EqualFold(origin, h.FrontendURL)
		},
	}
}

// ServeWs upgrades an authenticated request and keeps the connection in the
// hub until the client goes away. The session comes from the cookie, the
// Authorization header, or ?token= for clients that cannot set either.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	token := middleware.SessionToken(c, h.CookieName)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized. Please log in."})
		return
	}
	claims, err := h.Sessions.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Session expired. Please log in again."})
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(id)
		conn.Close()
	}()

	logger := h.Logger.With(zap.String("conn_id", id), zap.String("user_id", claims.UserID()))
	logger.Debug("websocket connected")

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
