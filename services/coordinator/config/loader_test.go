// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestDurationYAML verifies duration strings round-trip.
func TestDurationYAML(t *testing.T) {
	t.Run("parses go duration strings", func(t *testing.T) {
		var d Duration
		require.NoError(t, yaml.Unmarshal([]byte(`"90s"`), &d))
		assert.Equal(t, 90*time.Second, d.Std())

		require.NoError(t, yaml.Unmarshal([]byte(`"2h"`), &d))
		assert.Equal(t, 2*time.Hour, d.Std())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var d Duration
		err := yaml.Unmarshal([]byte(`"soon"`), &d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})

	t.Run("marshals back to a string", func(t *testing.T) {
		out, err := yaml.Marshal(Duration(90 * time.Second))
		require.NoError(t, err)
		assert.Equal(t, "1m30s\n", string(out))
	})
}

// TestLoadCreatesDefault verifies first-run config creation.
func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coordinator.yaml")
	t.Setenv("SWARM_CONFIG", path)

	require.NoError(t, loadInternal())

	_, err := os.Stat(path)
	require.NoError(t, err, "first run must write the default config file")
	assert.Equal(t, "12400", Global.Port)
	assert.Equal(t, 2*time.Hour, Global.SessionTTL.Std())
	assert.Equal(t, 5, Global.RetryBudget)
}

// TestLoadReadsExisting verifies file values override defaults.
func TestLoadReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"9999\"\nsession_ttl: \"30m\"\nadmin_key: \"hunter2\"\n"), 0644))
	t.Setenv("SWARM_CONFIG", path)

	require.NoError(t, loadInternal())

	assert.Equal(t, "9999", Global.Port)
	assert.Equal(t, 30*time.Minute, Global.SessionTTL.Std())
	assert.Equal(t, "hunter2", Global.AdminKey)
	// Unset fields keep their defaults.
	assert.Equal(t, 90*time.Second, Global.LivenessTimeout.Std())
}

// TestEnvOverrides verifies container-style overrides win over the
// file.
func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("SWARM_PORT", "8123")
	t.Setenv("SWARM_ADMIN_KEY", "topsecret")
	t.Setenv("SWARM_DATA_DIR", "/var/lib/swarmcraft")
	t.Setenv("SWARM_RETRY_BUDGET", "9")

	applyEnvOverrides(&cfg)

	assert.Equal(t, "8123", cfg.Port)
	assert.Equal(t, "topsecret", cfg.AdminKey)
	assert.Equal(t, "/var/lib/swarmcraft", cfg.DataDir)
	assert.Equal(t, 9, cfg.RetryBudget)

	t.Run("invalid numeric override is ignored", func(t *testing.T) {
		cfg := DefaultConfig()
		t.Setenv("SWARM_RETRY_BUDGET", "lots")
		applyEnvOverrides(&cfg)
		assert.Equal(t, 5, cfg.RetryBudget)
	})
}
