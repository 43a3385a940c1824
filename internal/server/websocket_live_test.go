package server

import (
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wsTestTimeout      = 2 * time.Second
	wsTestPollInterval = 10 * time.Millisecond
)

// The ticket handshake and the hub need a real TCP listener; app.Test cannot
// carry a connection upgrade.
func TestWebsocket_EndToEnd(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := setupHandlerTestDB(t)
	user := seedTestUser(t, db, "ada")
	srv := newTestServer(t, db, rdb)
	app := srv.App()

	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/ws/ticket", nil, user.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ticketBody struct {
		Ticket string `json:"ticket"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ticketBody))
	require.NotEmpty(t, ticketBody.Ticket)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	wsURL := "ws://" + ln.Addr().String() + "/api/ws/?ticket=" + ticketBody.Ticket

	// The listener comes up asynchronously; a failed TCP connect leaves the
	// ticket unconsumed, so dialing again is safe.
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, dialErr := websocket.DefaultDialer.Dial(wsURL, nil)
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, wsTestTimeout, wsTestPollInterval)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return srv.hub.IsConnected(user.ID)
	}, wsTestTimeout, wsTestPollInterval)

	srv.hub.Send(user.ID, []byte(`{"type":"new_post","payload":{"id":1}}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wsTestTimeout)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"new_post","payload":{"id":1}}`, string(msg))

	// The ticket was consumed during the handshake.
	_, secondResp, dialErr := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, dialErr)
	require.NotNil(t, secondResp)
	assert.Equal(t, http.StatusUnauthorized, secondResp.StatusCode)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return !srv.hub.IsConnected(user.ID)
	}, wsTestTimeout, wsTestPollInterval)
}
