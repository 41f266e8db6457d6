// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the coordinator's YAML configuration with
// environment variable overrides for container deployments.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry "90s" / "2h" strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CoordinatorConfig is the coordinator service configuration.
type CoordinatorConfig struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// AdminKey gates admin endpoints. Empty disables the check
	// (development only).
	AdminKey string `yaml:"admin_key"`

	// DataDir is the badger store directory. Empty selects an
	// in-memory store with no persistence across restarts.
	DataDir string `yaml:"data_dir"`

	// SessionTTL is how long a session lives from creation.
	SessionTTL Duration `yaml:"session_ttl"`

	// LivenessTimeout is how long a disconnected participant survives
	// before the next step prunes them.
	LivenessTimeout Duration `yaml:"liveness_timeout"`

	// RetryBudget is the compare-and-swap attempt budget per mutation.
	RetryBudget int `yaml:"retry_budget"`

	// RetryBackoff is the base delay between attempts.
	RetryBackoff Duration `yaml:"retry_backoff"`

	// SweepInterval is how often the expiry sweeper runs.
	SweepInterval Duration `yaml:"sweep_interval"`

	// SendBuffer is the per-observer broadcast queue length.
	SendBuffer int `yaml:"send_buffer"`

	// WriteTimeout bounds one websocket write before the connection is
	// marked dead.
	WriteTimeout Duration `yaml:"write_timeout"`

	// OTLPEndpoint is the OpenTelemetry collector address. Empty
	// disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// DefaultConfig returns the stock coordinator configuration.
func DefaultConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Port:            "12400",
		DataDir:         "",
		SessionTTL:      Duration(2 * time.Hour),
		LivenessTimeout: Duration(90 * time.Second),
		RetryBudget:     5,
		RetryBackoff:    Duration(20 * time.Millisecond),
		SweepInterval:   Duration(time.Minute),
		SendBuffer:      32,
		WriteTimeout:    Duration(5 * time.Second),
	}
}
