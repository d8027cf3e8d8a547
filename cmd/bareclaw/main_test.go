package main

import "testing"

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"repl", "discord", "telegram", "serve", "cron"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestCronCmdIncludesAllSubcommands(t *testing.T) {
	cronCmd := buildCronCmd()
	names := map[string]bool{}
	for _, sub := range cronCmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"add", "add-prompt", "remove", "pause", "resume", "list", "run"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected cron subcommand %q to be registered", name)
		}
	}
}
