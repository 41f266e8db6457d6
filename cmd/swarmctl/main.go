// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/swarmcraft/swarmcraft/pkg/logging"
)

var (
	serverURL string
	adminKey  string
	logger    = logging.Default()
)

var rootCmd = &cobra.Command{
	Use:   "swarmctl",
	Short: "Operate SwarmCraft optimization sessions",
	Long: `swarmctl drives a SwarmCraft coordinator from the command line.

A facilitator creates a session, shares the join code, and steers the
run through its lifecycle:

  swarmctl session create --landscape rastrigin
  swarmctl session start ABC123
  swarmctl session step ABC123
  swarmctl session close ABC123

Participants join with their own client; swarmctl join is a quick way
to register one from a terminal.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("SWARM_SERVER", "http://localhost:12400"),
		"Coordinator base URL")
	rootCmd.PersistentFlags().StringVar(&adminKey, "admin-key",
		os.Getenv("SWARM_ADMIN_KEY"),
		"Admin key for lifecycle commands")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(statusCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
