package offline_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/jobtracker/internal/offline"
	"github.com/dom/jobtracker/internal/testutil"
	"github.com/dom/jobtracker/internal/websocket"
)

const wsTimeout = 2 * time.Second

func TestMessageHandler_SkipWaiting(t *testing.T) {
	storage := offline.NewStorage()
	network := newFakeNetwork()

	hub := websocket.NewHub()
	reg := offline.NewRegistration(hub)
	hub.SetMessageHandler(offline.MessageHandler(reg))
	hub.SetConnectHandler(offline.ConnectHandler(reg))
	go hub.Run()
	t.Cleanup(hub.Stop)

	first := newWorkerWithSkip(t, storage, network, "jobtracker-v1", false)
	require.NoError(t, reg.Update(context.Background(), first))
	second := newWorkerWithSkip(t, storage, network, "jobtracker-v2", false)
	require.NoError(t, reg.Update(context.Background(), second))

	server := httptest.NewServer(websocket.ServeWS(hub))
	t.Cleanup(server.Close)

	client := testutil.NewWSClient(t, testutil.WebSocketURL(server.URL, "/"))

	var state offline.RegistrationState
	client.ExpectPayload(websocket.MessageTypeWorkerState, wsTimeout, &state)
	require.NotNil(t, state.Active)
	require.NotNil(t, state.Waiting)
	assert.Equal(t, first.ID(), state.Active.ID)
	assert.Equal(t, second.ID(), state.Waiting.ID)

	client.Send(websocket.MessageTypeSkipWaiting, nil)

	var controller offline.WorkerInfo
	client.ExpectPayload(websocket.MessageTypeControllerChange, wsTimeout, &controller)
	assert.Equal(t, second.ID(), controller.ID)
	assert.Equal(t, offline.StateActivated, controller.State)
	assert.Same(t, second, reg.Active())

	client.Send(websocket.MessageTypeGetState, nil)
	state = offline.RegistrationState{}
	client.ExpectPayload(websocket.MessageTypeWorkerState, wsTimeout, &state)
	require.NotNil(t, state.Active)
	assert.Equal(t, second.ID(), state.Active.ID)
	assert.Nil(t, state.Waiting)
}

func TestMessageHandler_UnknownMessage(t *testing.T) {
	hub := websocket.NewHub()
	reg := offline.NewRegistration(hub)
	hub.SetMessageHandler(offline.MessageHandler(reg))
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(websocket.ServeWS(hub))
	t.Cleanup(server.Close)

	client := testutil.NewWSClient(t, testutil.WebSocketURL(server.URL, "/"))
	client.Send(websocket.MessageType("RELOAD"), nil)

	errPayload := client.ExpectError(wsTimeout)
	assert.Equal(t, "UNKNOWN_MESSAGE", errPayload.Code)
}
