// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

var joinName string // Display name for the new participant

var joinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a session as a participant",
	Long: `Registers a participant in a waiting session and prints the
participant id to use on the websocket connection.

Example:
  swarmctl join ABC123 --name dana`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if joinName != "" {
			body["name"] = joinName
		}
		var out map[string]any
		if err := newClient().do(cmd.Context(), http.MethodPost,
			"/v1/join/"+args[0], body, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <code>",
	Short: "Show the live state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]any
		if err := newClient().do(cmd.Context(), http.MethodGet,
			"/v1/sessions/"+args[0]+"/status", nil, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	joinCmd.Flags().StringVarP(&joinName, "name", "n", "",
		"Display name (defaults to a generated one)")
}
