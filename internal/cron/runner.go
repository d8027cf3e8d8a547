package cron

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Jaruso/bareclaw/internal/agent"
)

// Add appends a new shell task with next_run=0 (due immediately) and
// returns it.
func (tb *Table) Add(schedule, command string) (Task, error) {
	if _, err := Parse(schedule); err != nil {
		return Task{}, err
	}
	t := Task{ID: tb.NextID(), Schedule: schedule, Command: command, Enabled: true}
	tb.Tasks = append(tb.Tasks, t)
	return t, nil
}

// AddPrompt appends a new prompt task (Command is the "-" placeholder).
func (tb *Table) AddPrompt(schedule, prompt string) (Task, error) {
	if _, err := Parse(schedule); err != nil {
		return Task{}, err
	}
	t := Task{ID: tb.NextID(), Schedule: schedule, Command: "-", Prompt: prompt, Enabled: true}
	tb.Tasks = append(tb.Tasks, t)
	return t, nil
}

// Remove deletes the task with the given ID.
func (tb *Table) Remove(id string) error {
	_, idx, found := tb.Find(id)
	if !found {
		return fmt.Errorf("cron: no such task: %s", id)
	}
	tb.Tasks = append(tb.Tasks[:idx], tb.Tasks[idx+1:]...)
	return nil
}

// Pause sets enabled=false on the given task.
func (tb *Table) Pause(id string) error {
	_, idx, found := tb.Find(id)
	if !found {
		return fmt.Errorf("cron: no such task: %s", id)
	}
	tb.Tasks[idx].Enabled = false
	return nil
}

// Resume sets enabled=true and, if next_run was 0, recomputes it from
// the current time.
func (tb *Table) Resume(id string, now int64) error {
	task, idx, found := tb.Find(id)
	if !found {
		return fmt.Errorf("cron: no such task: %s", id)
	}
	tb.Tasks[idx].Enabled = true
	if task.NextRunUnix == 0 {
		expr, err := Parse(task.Schedule)
		if err != nil {
			return fmt.Errorf("cron: resume %s: %w", id, err)
		}
		tb.Tasks[idx].NextRunUnix = expr.NextRunAfter(now)
	}
	return nil
}

// Due returns the enabled tasks whose next_run is 0 or has arrived.
func (tb *Table) Due(now int64) []Task {
	var due []Task
	for _, t := range tb.Tasks {
		if !t.Enabled {
			continue
		}
		if t.NextRunUnix == 0 || now >= t.NextRunUnix {
			due = append(due, t)
		}
	}
	return due
}

// RunResult captures one task execution's outcome.
type RunResult struct {
	TaskID string
	Output string
	Err    error
}

// RunDue executes every due, enabled task: shell tasks spawn /bin/sh -c;
// prompt tasks run a full agent turn via agentDeps and persist the
// result under memory key "cron/<task_id>/<now>". After every execution
// (success or failure) last_run and next_run are updated; once every due
// task has run, the whole table is rewritten atomically in one Save.
func (tb *Table) RunDue(ctx context.Context, agentDeps agent.Deps, now int64) ([]RunResult, error) {
	var results []RunResult
	for _, t := range tb.Due(now) {
		var out string
		var err error
		if t.IsPromptTask() {
			out, err = runPromptTask(ctx, agentDeps, t, now)
		} else {
			out, err = runShellTask(t)
		}
		results = append(results, RunResult{TaskID: t.ID, Output: out, Err: err})

		_, idx, found := tb.Find(t.ID)
		if !found {
			continue
		}
		tb.Tasks[idx].LastRunUnix = now
		expr, perr := Parse(t.Schedule)
		if perr == nil {
			tb.Tasks[idx].NextRunUnix = expr.NextRunAfter(now)
		}
	}
	if err := tb.Save(); err != nil {
		return results, err
	}
	return results, nil
}

func runShellTask(t Task) (string, error) {
	cmd := exec.Command("/bin/sh", "-c", t.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	out := stdout.String()
	if strings.TrimSpace(out) == "" {
		out = stderr.String()
	}
	return out, err
}

func runPromptTask(ctx context.Context, deps agent.Deps, t Task, now int64) (string, error) {
	answer, err := agent.Run(ctx, deps, t.Prompt, nil)
	if err != nil {
		return "", err
	}
	if deps.ToolContext != nil && deps.ToolContext.Memory != nil {
		header := fmt.Sprintf(
			"# Cron task %s\n\nSchedule: %s\nPrompt: %s\nRan: %s\n\n",
			t.ID, t.Schedule, t.Prompt, time.Unix(now, 0).UTC().Format(time.RFC3339),
		)
		key := fmt.Sprintf("cron/%s/%d", t.ID, now)
		_ = deps.ToolContext.Memory.Store(key, header+answer)
	}
	return answer, nil
}
