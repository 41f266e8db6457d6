// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the coordinator
// service.
//
// Admin operations (create, start, pause, step, close) are gated by a
// shared admin key carried in the X-Admin-Key header. The exact
// credential mechanism is deliberately this thin: the coordinator only
// needs a capability check that maps a bad credential to Forbidden.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader is the header admin clients present their key in.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth returns middleware that rejects requests whose admin key
// does not match. An empty configured key disables the check for local
// development; that mode is logged loudly at setup.
func AdminAuth(key string) gin.HandlerFunc {
	if key == "" {
		slog.Warn("admin key is empty; admin endpoints are unprotected (development mode)")
		return func(c *gin.Context) { c.Next() }
	}

	want := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(AdminKeyHeader))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			slog.Warn("rejected admin request with bad key", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"kind":  "forbidden",
				"error": "missing or invalid admin key",
			})
			return
		}
		c.Next()
	}
}
