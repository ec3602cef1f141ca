package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/api/middleware"
	"go-quickstart/internal/auth"
	"go-quickstart/internal/cache"
	"go-quickstart/internal/models"
	"go-quickstart/internal/socket"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
)

func newSocketServer(t *testing.T, revoked middleware.RevocationChecker) (*httptest.Server, *socket.Hub, *auth.TokenManager) {
	hub := socket.NewHub(zaptest.NewLogger(t))
	tokens := auth.NewTokenManager("ws-secret", time.Hour)
	h := &WebSocketHandler{Hub: hub, Tokens: tokens, Revoked: revoked, Log: zaptest.NewLogger(t)}

	r := gin.New()
	r.GET("/deliveries/:orderId/ws", h.TrackDelivery)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv, hub, tokens
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestTrackDeliverySocketRejectsBadToken(t *testing.T) {
	srv, _, _ := newSocketServer(t, nil)

	for _, path := range []string{"/deliveries/o1/ws", "/deliveries/o1/ws?token=nope"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, path), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestTrackDeliverySocketReceivesBroadcast(t *testing.T) {
	srv, hub, tokens := newSocketServer(t, nil)

	token, err := tokens.Generate(&models.User{ID: primitive.NewObjectID(), Role: "user"})
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/deliveries/o1/ws?token="+token), nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("o1") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.Broadcast("o1", []byte(`{"status":"in_transit"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.JSONEq(t, `{"status":"in_transit"}`, string(data))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.Subscribers("o1") == 0 }, time.Second, 5*time.Millisecond)
}

type failingBlacklist struct{}

func (failingBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestTrackDeliverySocketHonoursLogout(t *testing.T) {
	mr := miniredis.RunT(t)
	blacklist := cache.NewCache(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = blacklist.Close() })

	srv, hub, tokens := newSocketServer(t, blacklist)

	token, err := tokens.Generate(&models.User{ID: primitive.NewObjectID(), Role: "user"})
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/deliveries/o1/ws?token="+token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Subscribers("o1"))
}

func TestTrackDeliverySocketBlacklistUnavailable(t *testing.T) {
	srv, _, tokens := newSocketServer(t, failingBlacklist{})

	token, err := tokens.Generate(&models.User{ID: primitive.NewObjectID(), Role: "user"})
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/deliveries/o1/ws?token="+token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
