package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gossip/internal/domain"
	"gossip/internal/security"
	"gossip/internal/ws"
)

const testOrigin = "http://localhost:3000"

func newHandlerServer(t *testing.T, fx *routerFixture, tokens *security.TokenService) *httptest.Server {
	t.Helper()
	handler := ws.MakeHandler(fx.router, tokens, []string{testOrigin}, zap.NewNop().Sugar())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{testOrigin}}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev ws.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	fx := newRouterFixture(t)
	tokens := security.NewTokenService("test-secret", time.Hour)
	srv := newHandlerServer(t, fx, tokens)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{testOrigin}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerRejectsBadToken(t *testing.T) {
	fx := newRouterFixture(t)
	tokens := security.NewTokenService("test-secret", time.Hour)
	srv := newHandlerServer(t, fx, tokens)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{testOrigin}}
	header.Set("Authorization", "Bearer not-a-token")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerJoinRoomFlow(t *testing.T) {
	fx := newRouterFixture(t)
	tokens := security.NewTokenService("test-secret", time.Hour)
	srv := newHandlerServer(t, fx, tokens)

	fx.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "alice"}, nil)
	fx.users.On("SetOnlineStatus", mock.Anything, int64(1), mock.Anything).Return(nil)

	token, err := tokens.CreateForUser(1)
	require.NoError(t, err)
	conn := dialWS(t, srv, token)

	require.NoError(t, conn.WriteJSON(ws.Event{Event: ws.EventJoinRoom, Data: []byte(`{"user":1}`)}))

	ev := readEvent(t, conn)
	assert.Equal(t, ws.EventUsers, ev.Event, "joining broadcasts presence to the new session too")
}

func TestHandlerJoinRoomUserMustMatchToken(t *testing.T) {
	fx := newRouterFixture(t)
	tokens := security.NewTokenService("test-secret", time.Hour)
	srv := newHandlerServer(t, fx, tokens)

	token, err := tokens.CreateForUser(1)
	require.NoError(t, err)
	conn := dialWS(t, srv, token)

	require.NoError(t, conn.WriteJSON(ws.Event{Event: ws.EventJoinRoom, Data: []byte(`{"user":2}`)}))

	ev := readEvent(t, conn)
	assert.Equal(t, ws.EventError, ev.Event)
	fx.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestHandlerMalformedPayload(t *testing.T) {
	fx := newRouterFixture(t)
	tokens := security.NewTokenService("test-secret", time.Hour)
	srv := newHandlerServer(t, fx, tokens)

	token, err := tokens.CreateForUser(1)
	require.NoError(t, err)
	conn := dialWS(t, srv, token)

	require.NoError(t, conn.WriteJSON(ws.Event{Event: ws.EventJoinRoom, Data: []byte(`"not an object"`)}))

	ev := readEvent(t, conn)
	assert.Equal(t, ws.EventError, ev.Event)

	// the connection survives a malformed event
	fx.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
	fx.users.On("SetOnlineStatus", mock.Anything, int64(1), mock.Anything).Return(nil)
	require.NoError(t, conn.WriteJSON(ws.Event{Event: ws.EventJoinRoom, Data: []byte(`{"user":1}`)}))
	ev = readEvent(t, conn)
	assert.Equal(t, ws.EventUsers, ev.Event)
}
