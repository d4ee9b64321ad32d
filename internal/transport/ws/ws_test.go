package ws_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/ticket-router/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := ws.NewHub()
	r := gin.New()
	hub.Register(r.Group("/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(map[string]string{"type": "run_completed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "run_completed", got["type"])
}

func TestHub_ClientRemovedOnClose(t *testing.T) {
	hub := ws.NewHub()
	r := gin.New()
	hub.Register(r.Group("/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
