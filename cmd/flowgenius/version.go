package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidvanstory/flowgenius"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowgenius",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flowgenius version %s\n", strings.TrimSpace(flowgenius.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
