package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Jaruso/bareclaw/internal/cron"
	"github.com/spf13/cobra"
)

func loadCronTable() (*cron.Table, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return nil, fmt.Errorf("bareclaw: HOME is not set")
	}
	return cron.Load(cron.DefaultPath(home))
}

func buildCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Manage and run scheduled tasks",
	}
	cmd.AddCommand(
		buildCronAddCmd(),
		buildCronAddPromptCmd(),
		buildCronRemoveCmd(),
		buildCronPauseCmd(),
		buildCronResumeCmd(),
		buildCronListCmd(),
		buildCronRunCmd(),
	)
	return cmd
}

func buildCronAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <schedule> <command>",
		Short: "Add a shell task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			task, err := tb.Add(args[0], args[1])
			if err != nil {
				return err
			}
			if err := tb.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added task %s\n", task.ID)
			return nil
		},
	}
}

func buildCronAddPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-prompt <schedule> <prompt>",
		Short: "Add a prompt task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			task, err := tb.AddPrompt(args[0], args[1])
			if err != nil {
				return err
			}
			if err := tb.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added task %s\n", task.ID)
			return nil
		},
	}
}

func buildCronRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			if err := tb.Remove(args[0]); err != nil {
				return err
			}
			return tb.Save()
		},
	}
}

func buildCronPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Disable a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			if err := tb.Pause(args[0]); err != nil {
				return err
			}
			return tb.Save()
		},
	}
}

func buildCronResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Enable a task, recomputing next_run if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			if err := tb.Resume(args[0], time.Now().Unix()); err != nil {
				return err
			}
			return tb.Save()
		},
	}
}

func buildCronListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			for _, t := range tb.Tasks {
				kind := "shell"
				body := t.Command
				if t.IsPromptTask() {
					kind = "prompt"
					body = t.Prompt
				}
				status := "enabled"
				if !t.Enabled {
					status = "paused"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Schedule, kind, status, body)
			}
			return nil
		},
	}
}

func buildCronRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute every due, enabled task once",
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := loadCronTable()
			if err != nil {
				return err
			}
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			results, err := tb.RunDue(context.Background(), rt.agentDeps, time.Now().Unix())
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %v\n", r.TaskID, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.TaskID, r.Output)
			}
			return nil
		},
	}
}
