// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/engine"
	"github.com/swarmcraft/swarmcraft/services/coordinator/hub"
	"github.com/swarmcraft/swarmcraft/services/coordinator/store"
)

type wsFixture struct {
	eng    *engine.Engine
	hub    *hub.Hub
	server *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := hub.New(hub.DefaultConfig(), nil)
	eng := engine.New(st, h, engine.DefaultConfig(), nil)

	router := gin.New()
	router.GET("/v1/sessions/:code/ws", HandleSessionWebSocket(eng, h))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsFixture{eng: eng, hub: h, server: server}
}

func (f *wsFixture) dial(t *testing.T, code, participantID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		"/v1/sessions/" + code + "/ws?participant=" + participantID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readMessage reads one JSON frame with a deadline.
func readMessage(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var out map[string]any
	require.NoError(t, ws.ReadJSON(&out))
	return out
}

// readUntilType drains frames until one of the wanted type arrives.
// Broadcasts from concurrent mutations may interleave with replies.
func readUntilType(t *testing.T, ws *websocket.Conn, wantType string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMessage(t, ws)
		if msg["type"] == wantType {
			return msg
		}
	}
	t.Fatalf("never received a %q frame", wantType)
	return nil
}

// TestWebSocketGreeting verifies the connect handshake.
func TestWebSocketGreeting(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "dana")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)

	greeting := readMessage(t, ws)
	assert.Equal(t, "connected", greeting["type"])
	assert.Equal(t, p.ID, greeting["participant_id"])

	state := readMessage(t, ws)
	assert.Equal(t, "session_state", state["type"])
	assert.Equal(t, "waiting", state["status"])
}

// TestWebSocketRejectsUnknownParticipant verifies the pre-upgrade
// checks.
func TestWebSocketRejectsUnknownParticipant(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		"/v1/sessions/" + rec.Session.Code + "/ws?participant=ghost"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	t.Run("unknown session too", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/sessions/ZZZZZZ/ws?participant=x"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// TestWebSocketMoveAndBroadcast verifies a move frame mutates state and
// every observer hears about it.
func TestWebSocketMoveAndBroadcast(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	code := rec.Session.Code

	p1, _, err := f.eng.JoinSession(ctx, code, "mover")
	require.NoError(t, err)
	p2, _, err := f.eng.JoinSession(ctx, code, "watcher")
	require.NoError(t, err)
	_, err = f.eng.Start(ctx, code)
	require.NoError(t, err)

	mover := f.dial(t, code, p1.ID)
	watcher := f.dial(t, code, p2.ID)
	readMessage(t, mover)  // connected
	readMessage(t, mover)  // initial state
	readMessage(t, watcher)
	readMessage(t, watcher)

	require.NoError(t, mover.WriteJSON(map[string]any{
		"type":     "move",
		"position": []float64{1.5, -1.5},
	}))

	state := readUntilType(t, watcher, "session_state")
	parts, ok := state["participants"].([]any)
	require.True(t, ok)

	found := false
	for _, raw := range parts {
		pv := raw.(map[string]any)
		if pv["id"] == p1.ID {
			found = true
			pos, ok := pv["position"].([]any)
			require.True(t, ok)
			assert.InDelta(t, 1.5, pos[0].(float64), 1e-9)
			assert.InDelta(t, -1.5, pos[1].(float64), 1e-9)
		}
	}
	assert.True(t, found, "watcher's broadcast must carry the mover's new position")
}

// TestWebSocketPing verifies the liveness frame.
func TestWebSocketPing(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)
	readMessage(t, ws)
	readMessage(t, ws)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "ping"}))
	pong := readUntilType(t, ws, "pong")
	assert.NotNil(t, pong)
}

// TestWebSocketGetState verifies on-demand state frames.
func TestWebSocketGetState(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "rastrigin"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)
	readMessage(t, ws)
	readMessage(t, ws)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "get_state"}))
	state := readUntilType(t, ws, "session_state")
	assert.Equal(t, rec.Session.Code, state["code"])
}

// TestWebSocketUnknownType verifies the error reply.
func TestWebSocketUnknownType(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)
	readMessage(t, ws)
	readMessage(t, ws)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "dance"}))
	errFrame := readUntilType(t, ws, "error")
	assert.Contains(t, errFrame["error"], "unknown message type")
}

// TestWebSocketMoveInWaitingSessionErrors verifies move frames outside
// the active state come back as error frames, not dropped connections.
func TestWebSocketMoveInWaitingSessionErrors(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)
	readMessage(t, ws)
	readMessage(t, ws)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "move", "position": []float64{1, 1}}))
	errFrame := readUntilType(t, ws, "error")
	assert.Equal(t, "illegal_transition", errFrame["kind"])

	// The connection survives the rejected move.
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "ping"}))
	readUntilType(t, ws, "pong")
}

// TestWebSocketDisconnectMarksParticipant verifies the defer path
// clears liveness.
func TestWebSocketDisconnectMarksParticipant(t *testing.T) {
	f := newWSFixture(t)
	ctx := context.Background()

	rec, err := f.eng.CreateSession(ctx, datatypes.SessionConfig{LandscapeType: "quadratic"})
	require.NoError(t, err)
	p, _, err := f.eng.JoinSession(ctx, rec.Session.Code, "")
	require.NoError(t, err)

	ws := f.dial(t, rec.Session.Code, p.ID)
	readMessage(t, ws)
	readMessage(t, ws)
	require.Equal(t, 1, f.hub.ObserverCount(rec.Session.Code))

	ws.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := f.eng.Status(ctx, rec.Session.Code)
		require.NoError(t, err)
		if !got.Participants[0].Connected {
			assert.Equal(t, 0, f.hub.ObserverCount(rec.Session.Code))
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("participant was never marked disconnected after the socket closed")
}
