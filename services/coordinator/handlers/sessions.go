// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/engine"
)

// JoinRequest is the optional body of a join call.
type JoinRequest struct {
	Name string `json:"name"`
}

// CreateSession creates a new waiting session from a landscape and
// algorithm configuration. Admin only.
func CreateSession(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg datatypes.SessionConfig
		if err := c.ShouldBindJSON(&cfg); err != nil {
			abortWithError(c, datatypes.Wrap(datatypes.KindValidation, err, "malformed session config"))
			return
		}
		rec, err := eng.CreateSession(c.Request.Context(), cfg)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id":   rec.Session.ID,
			"session_code": rec.Session.Code,
			"status":       rec.Session.Status,
			"expires_at":   rec.Session.ExpiresAt,
		})
	}
}

// ListSessions returns every live session. Admin only.
func ListSessions(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := eng.List(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		out := make([]gin.H, 0, len(recs))
		for _, rec := range recs {
			out = append(out, gin.H{
				"session_id":   rec.Session.ID,
				"session_code": rec.Session.Code,
				"status":       rec.Session.Status,
				"landscape":    rec.Session.Config.LandscapeType,
				"participants": len(rec.Participants),
				"iteration":    rec.Swarm.Iteration,
				"expires_at":   rec.Session.ExpiresAt,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// JoinSession adds a participant to a waiting session by its code.
func JoinSession(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinRequest
		// Body is optional; a bare POST joins with a generated name.
		_ = c.ShouldBindJSON(&req)

		code, err := sessionCode(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		participant, rec, err := eng.JoinSession(c.Request.Context(), code, req.Name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"participant_id":   participant.ID,
			"participant_name": participant.Name,
			"session_code":     rec.Session.Code,
			"status":           rec.Session.Status,
		})
	}
}

// SessionStatus returns the public view of a session.
func SessionStatus(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := sessionCode(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		rec, err := eng.Status(c.Request.Context(), code)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, engine.StatePayloadFrom(rec))
	}
}

// admin lifecycle handlers

// StartSession activates a waiting session and initializes the swarm.
func StartSession(eng *engine.Engine) gin.HandlerFunc {
	return lifecycleHandler("start", eng.Start)
}

// PauseSession suspends stepping on an active session.
func PauseSession(eng *engine.Engine) gin.HandlerFunc {
	return lifecycleHandler("pause", eng.Pause)
}

// ResumeSession reactivates a paused session.
func ResumeSession(eng *engine.Engine) gin.HandlerFunc {
	return lifecycleHandler("resume", eng.Resume)
}

// StepSession advances the swarm by one iteration.
func StepSession(eng *engine.Engine) gin.HandlerFunc {
	return lifecycleHandler("step", eng.Step)
}

// CloseSession completes a session. The record stays readable until its
// TTL.
func CloseSession(eng *engine.Engine) gin.HandlerFunc {
	return lifecycleHandler("close", eng.Close)
}

func lifecycleHandler(op string, fn func(ctx context.Context, code string) (*datatypes.SessionRecord, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := sessionCode(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		rec, err := fn(c.Request.Context(), code)
		if err != nil {
			slog.Info("lifecycle operation rejected", "op", op, "session", code, "error", err)
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_code": rec.Session.Code,
			"status":       rec.Session.Status,
			"iteration":    rec.Swarm.Iteration,
		})
	}
}
