// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swarmcraft/swarmcraft/services/coordinator/engine"
	"github.com/swarmcraft/swarmcraft/services/coordinator/handlers"
	"github.com/swarmcraft/swarmcraft/services/coordinator/hub"
	"github.com/swarmcraft/swarmcraft/services/coordinator/middleware"
)

// Setup registers every coordinator route on the router.
func Setup(router *gin.Engine, eng *engine.Engine, h *hub.Hub, adminKey string) {
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := middleware.AdminAuth(adminKey)

	v1 := router.Group("/v1")
	{
		v1.POST("/join/:code", handlers.JoinSession(eng))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", admin, handlers.CreateSession(eng))
			sessions.GET("", admin, handlers.ListSessions(eng))
			sessions.GET("/:code/status", handlers.SessionStatus(eng))
			sessions.GET("/:code/ws", handlers.HandleSessionWebSocket(eng, h))
			sessions.POST("/:code/start", admin, handlers.StartSession(eng))
			sessions.POST("/:code/pause", admin, handlers.PauseSession(eng))
			sessions.POST("/:code/resume", admin, handlers.ResumeSession(eng))
			sessions.POST("/:code/step", admin, handlers.StepSession(eng))
			sessions.DELETE("/:code", admin, handlers.CloseSession(eng))
		}
	}
}
