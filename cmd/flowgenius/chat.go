package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/davidvanstory/flowgenius"
	"github.com/davidvanstory/flowgenius/internal/config"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive workflow session in the terminal",
	Long: `Drives the workflow engine locally with canned capability providers.
Type messages to chat; "/done" advances the stage, "/state" dumps the
session state, "exit" quits.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger := newLogger(cfg)

		engine, err := newEngine(cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		ctx := cmd.Context()
		sessionID := uuid.NewString()
		state, err := engine.CreateSession(ctx, sessionID, "")
		if err != nil {
			fmt.Printf("Error creating session: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("--- FlowGenius (session %s) ---\n", sessionID)

		// First tick seeds the welcome message.
		state = tick(cmd, engine, state)
		printLatest(state, 0)

		reader := bufio.NewReader(os.Stdin)
		for {
			fmt.Printf("[%s] > ", state.Stage)
			text, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			input := strings.TrimSpace(text)

			switch input {
			case "":
				continue
			case "exit", "quit":
				fmt.Println("Bye!")
				return
			case "/state":
				fmt.Printf("stage=%s action=%q messages=%d error=%q\n",
					state.Stage, state.LastUserAction, len(state.Messages), state.Error)
				continue
			case "/done":
				switch state.Stage {
				case domain.StageBrainstorm:
					state.LastUserAction = domain.ActionBrainstormDone
				case domain.StageSummary:
					state.LastUserAction = domain.ActionSummaryDone
				default:
					fmt.Println("Nothing left to advance.")
					continue
				}
			default:
				state.Messages = append(state.Messages, domain.Message{
					Role:            domain.RoleUser,
					Content:         input,
					CreatedAt:       time.Now().UTC(),
					StageAtCreation: state.Stage,
				})
				state.LastUserAction = domain.ActionChat
			}

			before := len(state.Messages)
			state = tick(cmd, engine, state)
			printLatest(state, before)

			if state.Error != "" {
				fmt.Printf("! %s\n", state.Error)
				state.Error = ""
			}
		}
	},
}

func tick(cmd *cobra.Command, engine *flowgenius.Engine, state *domain.SessionState) *domain.SessionState {
	next, err := engine.Execute(cmd.Context(), state)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return next
}

func printLatest(state *domain.SessionState, since int) {
	for _, msg := range state.Messages[since:] {
		if msg.Role == domain.RoleAssistant {
			fmt.Println(msg.Content)
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
