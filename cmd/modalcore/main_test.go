package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modalcore/internal/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKeysCommand(t *testing.T) {
	out, err := execute(t, "", "keys", "d2w<C-r><x")
	require.NoError(t, err)
	assert.Equal(t, "d\n2\nw\n<C-r>\n<lt>\nx\n", out)

	_, err = execute(t, "", "keys")
	assert.Error(t, err)
}

func TestReplayCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  []string
	}{
		{
			name: "delete word",
			args: []string{"--keys", "dw"},
			want: []string{"two three\n--\n", "mode: normal\n", "cursors: (0:0)\n", "undo steps: 1\n"},
		},
		{
			name:  "stdin in insert mode",
			stdin: "x",
			args:  []string{"--mode", "insert", "--keys", "hi<Esc>", "-"},
			want:  []string{"hix\n--\n", "mode: normal\n", "cursors: (0:1)\n", "undo steps: 1\n"},
		},
		{
			name: "two inserts are two undo steps",
			args: []string{"--keys", "ia<Esc>ib<Esc>"},
			want: []string{"undo steps: 2\n"},
		},
		{
			name: "operator left waiting",
			args: []string{"--keys", "d"},
			want: []string{"one two three\n--\n", "mode: operatorpending\n"},
		},
		{
			name: "visual selection",
			args: []string{"--keys", "vl"},
			want: []string{"mode: visual\n", "cursors: [(0:0)->(0:2)]\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"replay"}, tt.args...)
			if tt.stdin == "" {
				args = append(args, writeFile(t, "doc.txt", "one two three"))
			}
			out, err := execute(t, tt.stdin, args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestReplayUsesConfigRemaps(t *testing.T) {
	cfg := writeFile(t, "modalcore.toml", `
[[normalModeKeyBindings]]
before = ["Q"]
after = ["dd"]
`)
	doc := writeFile(t, "doc.txt", "a\nb")

	out, err := execute(t, "", "--config", cfg, "replay", "--keys", "Q", doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "b\n--\n"), out)
}

func TestReplayErrors(t *testing.T) {
	doc := writeFile(t, "doc.txt", "x")

	_, err := execute(t, "", "replay", "--mode", "visual", "--keys", "x", doc)
	assert.ErrorContains(t, err, "cannot start in visual mode")

	_, err = execute(t, "", "replay", doc)
	assert.Error(t, err, "--keys is required")

	_, err = execute(t, "", "--log-level", "loud", "replay", "--keys", "x", doc)
	assert.ErrorContains(t, err, "unknown log level")

	bad := writeFile(t, "bad.toml", "timeoutMs = -5\n")
	_, err = execute(t, "", "--config", bad, "replay", "--keys", "x", doc)
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestReplayMissingFileIsEmpty(t *testing.T) {
	out, err := execute(t, "", "replay", "--keys", "ihello<Esc>", filepath.Join(t.TempDir(), "new.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hello\n--\n"), out)
}

func TestRunTerminalEditsAndWrites(t *testing.T) {
	path := writeFile(t, "doc.txt", "world")
	opts := &options{settings: config.DefaultSettings()}
	screen := tcell.NewSimulationScreen("UTF-8")

	done := make(chan error, 1)
	go func() { done <- runTerminal(context.Background(), opts, path, screen) }()

	for _, r := range "ihi " {
		postKey(t, screen, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	postKey(t, screen, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	for _, r := range ":wq" {
		postKey(t, screen, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	postKey(t, screen, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi world", string(data))
}

// postKey retries until the screen is initialized and has queue room.
func postKey(t *testing.T, screen tcell.Screen, ev *tcell.EventKey) {
	t.Helper()
	require.Eventually(t, func() bool { return screen.PostEvent(ev) == nil }, 2*time.Second, time.Millisecond)
}
