// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/engine"
	"github.com/swarmcraft/swarmcraft/services/coordinator/hub"
)

// WSRequest is an inbound websocket frame from a participant.
type WSRequest struct {
	Type     string    `json:"type"`
	Position []float64 `json:"position,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// movesPerSecond caps position submissions per connection so one
// enthusiastic client cannot monopolize the session's CAS budget.
const movesPerSecond = 20

// HandleSessionWebSocket upgrades a participant connection, registers
// it as an observer of its session, and runs the inbound message loop.
//
// Protocol: the server greets with "connected" and the current
// "session_state"; the client sends "move" (position submission),
// "ping" (liveness, answered with "pong"), or "get_state". Every
// accepted mutation elsewhere in the system reaches this connection as
// a "session_state" broadcast.
func HandleSessionWebSocket(eng *engine.Engine, h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := sessionCode(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		participantID := c.Query("participant")
		ctx := c.Request.Context()

		rec, err := eng.Status(ctx, code)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if rec.FindParticipant(participantID) == nil {
			abortWithError(c, datatypes.E(datatypes.KindNotFound,
				"participant %q not in session %q", participantID, code))
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade websocket", "session", code, "error", err)
			return
		}

		conn := h.Register(code, participantID, ws)
		defer func() {
			h.Unregister(code, conn)
			eng.MarkDisconnected(ctx, code, participantID)
		}()

		h.Send(code, participantID, gin.H{
			"type":           "connected",
			"session_code":   code,
			"participant_id": participantID,
		})
		h.Send(code, participantID, engine.StatePayloadFrom(rec))

		limiter := rate.NewLimiter(rate.Limit(movesPerSecond), 2*movesPerSecond)
		for {
			var req WSRequest
			if err := ws.ReadJSON(&req); err != nil {
				slog.Info("websocket client disconnected",
					"session", code, "participant", participantID, "error", err.Error())
				return
			}
			select {
			case <-conn.Done():
				return
			default:
			}

			switch req.Type {
			case "move":
				if !limiter.Allow() {
					h.Send(code, participantID, gin.H{
						"type":  "error",
						"kind":  datatypes.KindValidation,
						"error": "too many position updates, slow down",
					})
					continue
				}
				if _, err := eng.SubmitPosition(ctx, code, participantID, req.Position); err != nil {
					h.Send(code, participantID, gin.H{
						"type":  "error",
						"kind":  datatypes.KindOf(err),
						"error": err.Error(),
					})
				}

			case "ping":
				if err := eng.Touch(ctx, code, participantID); err != nil {
					slog.Debug("ping touch failed", "session", code, "participant", participantID, "error", err)
				}
				h.Send(code, participantID, gin.H{"type": "pong"})

			case "get_state":
				current, err := eng.Status(ctx, code)
				if err != nil {
					h.Send(code, participantID, gin.H{
						"type":  "error",
						"kind":  datatypes.KindOf(err),
						"error": err.Error(),
					})
					continue
				}
				h.Send(code, participantID, engine.StatePayloadFrom(current))

			default:
				h.Send(code, participantID, gin.H{
					"type":  "error",
					"kind":  datatypes.KindValidation,
					"error": "unknown message type " + req.Type,
				})
			}
		}
	}
}
