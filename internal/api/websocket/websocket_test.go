package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/internal/models"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

func TestParseChannels(t *testing.T) {
	m := parseChannels("new_anomaly, processing_update,,bogus")
	assert.True(t, m["new_anomaly"])
	assert.True(t, m["processing_update"])
	assert.False(t, m["bogus"])

	all := parseChannels("")
	assert.Len(t, all, 3)
}

func TestHub_PublishReachesSubscribedClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(logger.NewMockLogger(&strings.Builder{}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", ServeWS(hub, config.WebSocketConfig{PingIntervalSec: 30}))
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?channels=new_anomaly"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// Registration goes through the hub's select loop; give it a beat.
	time.Sleep(50 * time.Millisecond)

	hub.Publish("processing_update", models.ProcessingUpdate{ProcessedCount: 5})
	hub.Publish("new_anomaly", models.AnomalyUpdate{LogID: "log_20260824_140000_abc12345"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var note models.Notification
	require.NoError(t, json.Unmarshal(msg, &note))
	// The processing_update was filtered out; only the subscribed channel
	// arrives.
	assert.Equal(t, "new_anomaly", note.Channel)
}
