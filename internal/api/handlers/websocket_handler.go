// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"go-quickstart/internal/api/middleware"
	"go-quickstart/internal/auth"
	"go-quickstart/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams delivery updates for one order to a tracking client.
// Revoked is the logout blacklist; nil disables the check.
type WebSocketHandler struct {
	Hub     *socket.Hub
	Tokens  *auth.TokenManager
	Revoked middleware.RevocationChecker
	Log     *zap.Logger
}

// TrackDelivery upgrades the connection and subscribes it to the order's updates.
// Browsers cannot set headers on websocket requests, so the token comes in the query.
func (h *WebSocketHandler) TrackDelivery(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}
	claims, err := h.Tokens.Parse(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	if h.Revoked != nil && claims.ID != "" {
		revoked, err := h.Revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			h.Log.Error("token blacklist lookup failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not verify token"})
			return
		}
		if revoked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
	}

	orderID := c.Param("orderId")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := h.Hub.Register(orderID, conn)
	h.Log.Debug("delivery tracker connected", zap.String("order_id", orderID), zap.String("user_id", claims.UserID))
	defer func() {
		h.Hub.Unregister(client)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(socket.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socket.PongWait))
	})
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(socket.PongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Debug("websocket closed unexpectedly", zap.String("order_id", orderID), zap.Error(err))
			}
			return
		}
	}
}
