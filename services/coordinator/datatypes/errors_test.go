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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorTaxonomy verifies kind extraction through wrapping.
func TestErrorTaxonomy(t *testing.T) {
	t.Run("KindOf sees through fmt wrapping", func(t *testing.T) {
		base := E(KindNotFound, "session %s not found", "ABC123")
		wrapped := fmt.Errorf("handler: %w", base)
		assert.Equal(t, KindNotFound, KindOf(wrapped))
		assert.True(t, IsNotFound(wrapped))
	})

	t.Run("Wrap preserves the cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(KindStoreUnavailable, cause, "could not persist session")
		require.Error(t, err)
		assert.True(t, IsStoreUnavailable(err))
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "could not persist session")
	})

	t.Run("unknown errors have no kind", func(t *testing.T) {
		assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
		assert.False(t, IsConflict(errors.New("plain")))
		assert.Equal(t, Kind(""), KindOf(nil))
	})

	t.Run("conflict helper", func(t *testing.T) {
		assert.True(t, IsConflict(E(KindConflict, "version mismatch")))
		assert.False(t, IsConflict(E(KindValidation, "bad input")))
	})
}
