package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestReplayCmd(t *testing.T) {
	logger = zap.NewNop()
	indent = false

	path := writeScript(t, `
sequences:
  - {key: a, values: [1, 1, 2, 3, 4, 4, 4, 5, 7, 8]}
statements:
  - {key: a, op: assign, value: 10, start: 3, end: 6}
queries:
  - {key: a, op: sum, start: 3, end: 6}
  - {key: a, op: len}
`)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runReplay(cmd, []string{path}); err != nil {
		t.Fatalf("runReplay failed: %v", err)
	}
	want := `[{"key":"a","op":"sum","range":"[3, 6)","value":30},{"key":"a","op":"len","range":"[0, len)","value":10}]` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("\ngot  %s\nwant %s", got, want)
	}
}

func TestReplayCmdErrors(t *testing.T) {
	logger = zap.NewNop()
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if err := runReplay(cmd, []string{filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected an error for a missing script")
	}

	path := writeScript(t, "queries: [{key: nope, op: sum}]")
	if err := runReplay(cmd, []string{path}); err == nil {
		t.Error("expected an error for an unknown key")
	}
}
