package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowgenius",
	Short: "FlowGenius is a staged idea-development workflow engine",
	Long:  `FlowGenius walks a conversation through brainstorm, summary, and PRD stages, routing each turn through a small graph-based workflow engine.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
