package cron

import (
	"context"
	"strings"
	"testing"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/Jaruso/bareclaw/internal/memory"
	"github.com/Jaruso/bareclaw/internal/providers"
	"github.com/Jaruso/bareclaw/internal/security"
	"github.com/Jaruso/bareclaw/internal/tools"
)

type stubProvider struct{ reply string }

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(_ context.Context, _, _, _ string, _ float64) (string, error) {
	return s.reply, nil
}

func newTestAgentDeps(t *testing.T, reply string) agent.Deps {
	t.Helper()
	dir := t.TempDir()
	pol, err := security.New(dir)
	if err != nil {
		t.Fatalf("security.New: %v", err)
	}
	toolCtx := &tools.Context{
		Policy: pol,
		Audit:  security.NewAuditLog(dir),
		Memory: memory.New(dir),
	}
	reg := tools.NewRegistry()
	tools.Register(reg)
	router := providers.NewRouter(&stubProvider{reply: reply})
	return agent.Deps{Router: router, Registry: reg, ToolContext: toolCtx, Model: "test-model"}
}

func TestAddThenDueImmediately(t *testing.T) {
	tb := &Table{}
	task, err := tb.Add("0 * * * *", "echo hi")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	due := tb.Due(1000)
	if len(due) != 1 || due[0].ID != task.ID {
		t.Fatalf("Due = %+v, want [%s]", due, task.ID)
	}
}

func TestDueSkipsDisabledAndNotYetArrived(t *testing.T) {
	tb := &Table{}
	disabled, _ := tb.Add("0 * * * *", "echo disabled")
	_, idx, _ := tb.Find(disabled.ID)
	tb.Tasks[idx].Enabled = false

	future, _ := tb.Add("0 * * * *", "echo future")
	_, idx2, _ := tb.Find(future.ID)
	tb.Tasks[idx2].NextRunUnix = 999999

	due := tb.Due(1000)
	if len(due) != 0 {
		t.Fatalf("Due = %+v, want none", due)
	}
}

func TestPauseThenResumeRecomputesNextRun(t *testing.T) {
	tb := &Table{}
	task, _ := tb.Add("0 * * * *", "echo hi")

	if err := tb.Pause(task.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	got, _, _ := tb.Find(task.ID)
	if got.Enabled {
		t.Fatal("expected task disabled after Pause")
	}

	if err := tb.Resume(task.ID, 1710510300); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	got, _, _ = tb.Find(task.ID)
	if !got.Enabled {
		t.Fatal("expected task enabled after Resume")
	}
	if got.NextRunUnix <= 1710510300 {
		t.Fatalf("expected NextRunUnix recomputed forward, got %d", got.NextRunUnix)
	}
}

func TestRemoveDeletesTask(t *testing.T) {
	tb := &Table{}
	task, _ := tb.Add("0 * * * *", "echo hi")
	if err := tb.Remove(task.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, _, found := tb.Find(task.ID); found {
		t.Fatal("expected task gone after Remove")
	}
}

func TestRemovePauseResumeUnknownIDError(t *testing.T) {
	tb := &Table{}
	if err := tb.Remove("nope"); err == nil {
		t.Error("Remove: expected error for unknown id")
	}
	if err := tb.Pause("nope"); err == nil {
		t.Error("Pause: expected error for unknown id")
	}
	if err := tb.Resume("nope", 0); err == nil {
		t.Error("Resume: expected error for unknown id")
	}
}

func TestRunDueExecutesShellTaskAndPersists(t *testing.T) {
	path := tempTSVPath(t)
	tb := &Table{path: path}
	task, err := tb.Add("0 * * * *", "echo hello-from-cron")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	deps := newTestAgentDeps(t, "unused")
	results, err := tb.RunDue(context.Background(), deps, 1000)
	if err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Output, "hello-from-cron") {
		t.Fatalf("shell task output = %q", results[0].Output)
	}

	got, _, _ := tb.Find(task.ID)
	if got.LastRunUnix != 1000 {
		t.Fatalf("LastRunUnix = %d, want 1000", got.LastRunUnix)
	}
	if got.NextRunUnix <= 1000 {
		t.Fatalf("NextRunUnix not advanced: %d", got.NextRunUnix)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after RunDue: %v", err)
	}
	if len(reloaded.Tasks) != 1 {
		t.Fatalf("expected table persisted with 1 task, got %d", len(reloaded.Tasks))
	}
}

func TestRunDueExecutesPromptTaskAndStoresMemory(t *testing.T) {
	tb := &Table{path: tempTSVPath(t)}
	task, err := tb.AddPrompt("@daily", "what is today's status")
	if err != nil {
		t.Fatalf("AddPrompt: %v", err)
	}

	deps := newTestAgentDeps(t, "Everything looks fine.")
	results, err := tb.RunDue(context.Background(), deps, 2000)
	if err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if len(results) != 1 || results[0].Output != "Everything looks fine." {
		t.Fatalf("results = %+v", results)
	}

	key := "cron/" + task.ID + "/2000"
	stored, err := deps.ToolContext.Memory.Recall(key)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if !strings.Contains(stored, "Everything looks fine.") {
		t.Fatalf("stored memory = %q", stored)
	}
	if !strings.Contains(stored, task.ID) {
		t.Fatalf("stored memory missing task id header: %q", stored)
	}
}

func tempTSVPath(t *testing.T) string {
	t.Helper()
	return t.TempDir() + "/cron.tsv"
}
