package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiq/internal/domain/models"
	xlogger "CryptoLiq/pkg/logger"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := NewHub(xlogger.Nop(), nil)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = h.Close() })
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/predictions"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcasts(t *testing.T) {
	h, url := startHub(t)
	all := dial(t, url)
	eth := dial(t, url+"?coin=Ethereum")
	require.Eventually(t, func() bool { return h.Len() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Publish(context.Background(), &models.Prediction{ID: "1", Coin: "Bitcoin", Level: models.LiquidityHigh}))
	require.NoError(t, h.Publish(context.Background(), &models.Prediction{ID: "2", Coin: "Ethereum", Level: models.LiquidityLow}))

	var got models.Prediction
	_ = all.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, "1", got.ID)
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, "2", got.ID)

	_ = eth.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, eth.ReadJSON(&got))
	assert.Equal(t, "2", got.ID)
	assert.Equal(t, models.LiquidityLow, got.Level)
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	h, url := startHub(t)
	require.NoError(t, h.Close())

	conn := dial(t, url)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, h.Len())
}
