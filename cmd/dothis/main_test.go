package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t       *testing.T
	storage string
	dataDir string
}

func (c cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()

	var stdout, stderr bytes.Buffer
	base := []string{"dothis", "--no-log", "--select-delay=0s", "--lang=en-US", "--storage=" + c.storage, "--data-dir=" + c.dataDir}
	err := Run(context.TODO(), append(base, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()

	out, err := c.run("", args...)
	require.NoError(c.t, err)
	return out
}

func TestCLITaskLifecycle(t *testing.T) {
	tests := map[string]struct {
		storage string
	}{
		"SQLite storage.": {storage: "sqlite"},
		"File storage.":   {storage: "file"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			dir := t.TempDir()
			c := cli{t: t, storage: test.storage, dataDir: filepath.Join(dir, "data")}

			assert.Contains(c.mustRun("add", "Walk the dog"), "Task added successfully!")
			assert.Contains(c.mustRun("add", "Read", "--repeat=daily"), "Task added successfully!")

			_, err := c.run("", "add", "Walk the dog")
			require.Error(t, err)
			assert.Contains(err.Error(), "This task already exists!")

			out := c.mustRun("list", "--format=json")
			assert.Contains(out, `"text": "Walk the dog"`)
			assert.Contains(out, `"type": "repeatable"`)

			assert.Contains(c.mustRun("accept", "Walk the dog"), "Task accepted: Walk the dog.")
			assert.Contains(c.mustRun("status"), "Task:       Walk the dog")

			_, err = c.run("", "rm", "Walk the dog")
			require.Error(t, err)
			assert.Contains(err.Error(), "Cannot change the active task")

			assert.Contains(c.mustRun("done"), "Task completed! Great job!")
			assert.Contains(c.mustRun("list", "--status=completed"), "Walk the dog")

			// Export, wipe and import back.
			exportPath := filepath.Join(dir, "export.json")
			assert.Contains(c.mustRun("export", "-o", exportPath), "Tasks exported to")
			assert.Contains(c.mustRun("reset", "--yes"), "Everything has been reset")
			assert.Contains(c.mustRun("import", exportPath, "--mode=replace"), "Replaced all tasks with 2 imported tasks")

			// The completed one-time task is not available anymore.
			out = c.mustRun("random", "--accept")
			assert.Contains(out, "Your task: Read")
			assert.Contains(out, "Task accepted: Read.")

			_, err = c.run("", "abandon", " ")
			require.Error(t, err)
			assert.Contains(c.mustRun("abandon", "raining"), "Task abandoned")
		})
	}
}

func TestCLITrash(t *testing.T) {
	assert := assert.New(t)
	c := cli{t: t, storage: "file", dataDir: t.TempDir()}

	c.mustRun("add", "Paint")
	assert.Contains(c.mustRun("rm", "Paint"), "Task moved to trash")
	assert.Contains(c.mustRun("trash", "list"), "Paint")
	assert.Contains(c.mustRun("trash", "restore", "Paint"), "Task restored")
	c.mustRun("rm", "Paint")
	assert.Contains(c.mustRun("trash", "clear"), "1 task deleted permanently")
	assert.Contains(c.mustRun("trash", "clear"), "Trash is already empty")
}

func TestCLIDoctor(t *testing.T) {
	assert := assert.New(t)
	c := cli{t: t, storage: "sqlite", dataDir: t.TempDir()}

	c.mustRun("add", "Paint")
	out := c.mustRun("doctor")
	assert.Contains(out, "Checking sqlite storage...")
	assert.Contains(out, "1 tasks stored")
	assert.Contains(out, "schema version 1")
	assert.Contains(out, "All checks passed!")
}

func TestCLISamples(t *testing.T) {
	assert := assert.New(t)
	c := cli{t: t, storage: "file", dataDir: t.TempDir()}

	assert.Contains(c.mustRun("samples"), "Added 8 sample tasks")
	assert.Contains(c.mustRun("samples"), "All tasks already exist (no new tasks imported)")
	assert.Contains(c.mustRun("random"), "Your task: ")
}

func TestCLISession(t *testing.T) {
	c := cli{t: t, storage: "memory", dataDir: t.TempDir()}

	out, err := c.run("add Walk\nrandom\naccept\nstatus\ndone\nquit\n", "session", "--no-timers")
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Contains(out, "Task added successfully!")
	assert.Contains(out, "Your task: Walk")
	// Real clock, the remaining time is truncated to whole minutes.
	assert.Regexp(`(8h 0m|7h 59m) remaining`, out)
	assert.Contains(out, "Task completed! Great job!")
	assert.Contains(out, "Bye!")
}

func TestCLIInvalidCommand(t *testing.T) {
	c := cli{t: t, storage: "memory", dataDir: t.TempDir()}

	_, err := c.run("", "fly")
	assert.Error(t, err)
}

func TestCLILogFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "dothis.log")

	var stdout, stderr bytes.Buffer
	args := []string{"dothis", "--debug", "--log-file=" + logFile, "--storage=memory", "--lang=en-US", "add", "Walk the dog"}
	err := Run(context.TODO(), args, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "Added task: Walk the dog")
	assert.Empty(t, stderr.String())
}
