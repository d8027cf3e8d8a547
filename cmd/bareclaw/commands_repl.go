package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/spf13/cobra"
)

func buildReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive stdin/stdout agent loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd)
		},
	}
}

func runRepl(cmd *cobra.Command) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(cmd.OutOrStdout(), "bareclaw> ready. Type a message, Ctrl-D to exit.")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if _, err := agent.Run(context.Background(), rt.agentDeps, line, cmd.OutOrStdout()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return scanner.Err()
}
