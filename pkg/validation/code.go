// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-supplied
// identifiers before they reach the store layer.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Alphabet is the character set session codes are generated from. It
// excludes the lookalikes O, 0, I, 1 and L so codes survive being read
// aloud in a classroom.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of a session code.
const CodeLength = 6

// codePattern is derived from Alphabet and CodeLength so generation
// and validation cannot drift apart.
var codePattern = regexp.MustCompile(`^[` + Alphabet + `]{` + strconv.Itoa(CodeLength) + `}$`)

// NormalizeCode uppercases and trims a session code as typed by a
// human, so "abc123 " and "ABC123" address the same session.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateCode reports whether a normalized session code is
// well-formed. Malformed codes are rejected before any store lookup;
// the error text never echoes more than the offending input.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("session code is empty")
	}
	if len(code) != CodeLength {
		return fmt.Errorf("session code %q must be %d characters", code, CodeLength)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("session code %q contains invalid characters", code)
	}
	return nil
}
