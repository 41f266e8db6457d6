// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	createLandscape       string  // Fitness landscape to optimize
	createAlgorithm       string  // pso or abc
	createSense           string  // minimize or maximize
	createMaxParticipants int     // Session capacity
	createMaxIterations   int     // Annealing horizon
	createGridSize        int     // Visualization grid resolution
	createExploration     float64 // Starting exploration probability
	stepCount             int     // Iterations to advance per invocation
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create and steer optimization sessions (admin)",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session and print its join code",
	Long: `Creates a session in the waiting state.

Examples:
  swarmctl session create --landscape rastrigin
  swarmctl session create --landscape ecological --algorithm abc
  swarmctl session create --landscape quadratic --max-iterations 200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"landscape_type":          createLandscape,
			"algorithm_type":          createAlgorithm,
			"sense":                   createSense,
			"max_participants":        createMaxParticipants,
			"max_iterations":          createMaxIterations,
			"grid_size":               createGridSize,
			"exploration_probability": createExploration,
		}
		var out map[string]any
		if err := newClient().do(cmd.Context(), http.MethodPost, "/v1/sessions", body, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out []map[string]any
		if err := newClient().do(cmd.Context(), http.MethodGet, "/v1/sessions", nil, &out); err != nil {
			return err
		}
		if len(out) == 0 {
			fmt.Println("no live sessions")
			return nil
		}
		return printJSON(out)
	},
}

var sessionStartCmd = lifecycleCommand("start", "Start a waiting session")
var sessionPauseCmd = lifecycleCommand("pause", "Pause an active session")
var sessionResumeCmd = lifecycleCommand("resume", "Resume a paused session")

var sessionStepCmd = &cobra.Command{
	Use:   "step <code>",
	Short: "Advance the swarm by one or more iterations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		var out map[string]any
		for i := 0; i < stepCount; i++ {
			if err := client.do(cmd.Context(), http.MethodPost,
				"/v1/sessions/"+args[0]+"/step", nil, &out); err != nil {
				return err
			}
		}
		return printJSON(out)
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close <code>",
	Short: "Complete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]any
		if err := newClient().do(cmd.Context(), http.MethodDelete,
			"/v1/sessions/"+args[0], nil, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

// lifecycleCommand builds the start/pause/resume commands, which only
// differ in the endpoint they hit.
func lifecycleCommand(op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := newClient().do(cmd.Context(), http.MethodPost,
				"/v1/sessions/"+args[0]+"/"+op, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	sessionCreateCmd.Flags().StringVarP(&createLandscape, "landscape", "l", "rastrigin",
		"Fitness landscape (rastrigin, quadratic, ecological)")
	sessionCreateCmd.Flags().StringVarP(&createAlgorithm, "algorithm", "a", "pso",
		"Optimizer (pso, abc)")
	sessionCreateCmd.Flags().StringVar(&createSense, "sense", "minimize",
		"Optimization sense (minimize, maximize)")
	sessionCreateCmd.Flags().IntVar(&createMaxParticipants, "max-participants", 50,
		"Session capacity")
	sessionCreateCmd.Flags().IntVar(&createMaxIterations, "max-iterations", 100,
		"Iterations over which annealing runs")
	sessionCreateCmd.Flags().IntVar(&createGridSize, "grid", 25,
		"Visualization grid resolution per axis")
	sessionCreateCmd.Flags().Float64Var(&createExploration, "exploration", 0.3,
		"Starting exploration probability")

	sessionStepCmd.Flags().IntVarP(&stepCount, "count", "n", 1,
		"Number of iterations to advance")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionPauseCmd)
	sessionCmd.AddCommand(sessionResumeCmd)
	sessionCmd.AddCommand(sessionStepCmd)
	sessionCmd.AddCommand(sessionCloseCmd)
}
