package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidvanstory/flowgenius"
	"github.com/davidvanstory/flowgenius/internal/config"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `Create, list, inspect, and remove sessions in the configured state store.`,
}

func sessionEngine() *flowgenius.Engine {
	cfg := config.Load()
	engine, err := newEngine(cfg, newLogger(cfg))
	if err != nil {
		fmt.Printf("Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [session-id]",
	Short: "Create a fresh session",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := uuid.NewString()
		if len(args) == 1 {
			sessionID = args[0]
		}
		userID, _ := cmd.Flags().GetString("user")

		state, err := sessionEngine().CreateSession(cmd.Context(), sessionID, userID)
		if err != nil {
			fmt.Printf("Error creating session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(state.SessionID)
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		ids, err := sessionEngine().Registry().List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No active sessions found.")
			return
		}
		fmt.Println("Active Sessions:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		state, err := sessionEngine().Session(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Remove a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := sessionEngine().ClearSession(cmd.Context(), args[0]); err != nil {
			fmt.Printf("Error removing session '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("Session '%s' removed.\n", args[0])
	},
}

func init() {
	sessionNewCmd.Flags().String("user", "", "User id to bind to the session")
	sessionCmd.AddCommand(sessionNewCmd, sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	rootCmd.AddCommand(sessionCmd)
}
