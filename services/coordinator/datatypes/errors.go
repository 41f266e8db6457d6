// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the coordinator can surface to a caller.
//
// # Description
//
// Every rejected operation carries exactly one Kind so that the HTTP
// boundary, the CLI, and tests can branch on the category without
// string matching. Conflict is the only kind that is retried locally;
// all others are surfaced immediately.
type Kind string

const (
	// KindNotFound: session or participant absent, or the session TTL
	// has expired (an expired record is indistinguishable from a
	// deleted one).
	KindNotFound Kind = "not_found"

	// KindConflict: version mismatch on compare-and-swap, or a step
	// collision where another step already advanced the iteration.
	KindConflict Kind = "conflict"

	// KindIllegalTransition: the operation is not legal in the
	// session's current status.
	KindIllegalTransition Kind = "illegal_transition"

	// KindForbidden: admin credential missing or wrong.
	KindForbidden Kind = "forbidden"

	// KindCapacityExceeded: the session already holds its maximum
	// participant count.
	KindCapacityExceeded Kind = "capacity_exceeded"

	// KindValidation: malformed position, config, or request payload.
	KindValidation Kind = "validation"

	// KindStoreUnavailable: the underlying store is unreachable or
	// failed mid-operation.
	KindStoreUnavailable Kind = "store_unavailable"
)

// Error is the coordinator's error type. It pairs a Kind with a
// human-readable reason and optionally wraps a lower-level cause.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs an Error with a formatted reason.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or "" if err is not a coordinator
// error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err carries KindConflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsIllegalTransition reports whether err carries KindIllegalTransition.
func IsIllegalTransition(err error) bool { return KindOf(err) == KindIllegalTransition }

// IsStoreUnavailable reports whether err carries KindStoreUnavailable.
func IsStoreUnavailable(err error) bool { return KindOf(err) == KindStoreUnavailable }
