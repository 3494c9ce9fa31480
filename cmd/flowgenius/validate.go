package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davidvanstory/flowgenius/internal/runtime"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <state-file>",
	Short: "Validate a session state JSON file",
	Long:  `Runs the structural pre-flight checks against a serialized session state and reports every issue found.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading state file: %v\n", err)
			os.Exit(1)
		}

		var state domain.SessionState
		if err := json.Unmarshal(data, &state); err != nil {
			fmt.Printf("Error parsing state file: %v\n", err)
			os.Exit(1)
		}

		issues := runtime.Issues(&state)
		if len(issues) == 0 {
			fmt.Println("State is valid.")
			return
		}
		fmt.Printf("Found %d issue(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Println("- " + issue)
		}
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
