// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the coordinator's HTTP and websocket
// endpoints. Handlers are thin: they parse the request, call the
// engine, and translate error kinds to status codes. All session
// semantics live in the engine.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarmcraft/swarmcraft/pkg/validation"
	"github.com/swarmcraft/swarmcraft/services/coordinator/datatypes"
)

// statusFor maps the coordinator error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch datatypes.KindOf(err) {
	case datatypes.KindNotFound:
		return http.StatusNotFound
	case datatypes.KindConflict, datatypes.KindIllegalTransition, datatypes.KindCapacityExceeded:
		return http.StatusConflict
	case datatypes.KindForbidden:
		return http.StatusForbidden
	case datatypes.KindValidation:
		return http.StatusBadRequest
	case datatypes.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sessionCode normalizes and validates the :code path parameter.
// Malformed codes are rejected before any store lookup.
func sessionCode(c *gin.Context) (string, error) {
	code := validation.NormalizeCode(c.Param("code"))
	if err := validation.ValidateCode(code); err != nil {
		return "", datatypes.Wrap(datatypes.KindValidation, err, "bad session code")
	}
	return code, nil
}

// abortWithError writes the error kind and human-readable reason to the
// client. Every rejected operation carries both.
func abortWithError(c *gin.Context, err error) {
	var ce *datatypes.Error
	if errors.As(err, &ce) {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"kind": ce.Kind, "error": ce.Reason})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
