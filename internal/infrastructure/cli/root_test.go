package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/voicectl/internal/infrastructure/cli/commands"
)

type harness struct {
	root       *cobra.Command
	out        *bytes.Buffer
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VOICECTL_CONFIG", "")
	t.Setenv("VOICECTL_STORAGE_DRIVER", "memory")
	t.Setenv("VOICECTL_LOG_LEVEL", "error")
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "")

	configPath := filepath.Join(home, "voicectl.yaml")
	root, cleanup, err := NewRootCmd(context.Background(), Options{ConfigPath: configPath})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	return &harness{root: root, out: out, configPath: configPath}
}

func (h *harness) exec(args ...string) (string, error) {
	h.out.Reset()
	h.root.SetArgs(args)
	err := h.root.ExecuteContext(context.Background())
	return h.out.String(), err
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.exec("version")
	require.NoError(t, err)
	assert.Contains(t, out, "voicectl version dev")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.exec("config", "path")
	require.NoError(t, err)
	assert.Equal(t, h.configPath+"\n", out)
	assert.FileExists(t, h.configPath)

	out, err = h.exec("config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, commands.MsgConfigurationValid)

	out, err = h.exec("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "driver: memory")

	out, err = h.exec("config", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, `"memory"`, "environment override differs from the default driver")
}

func TestRunRecordsHistory(t *testing.T) {
	h := newHarness(t)

	out, err := h.exec("run", "what", "time", "is", "it")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "✅ It's "), out)

	out, err = h.exec("run", "--source", "voice", "hello", "there")
	assert.ErrorIs(t, err, commands.ErrCommandFailed)
	assert.True(t, strings.HasPrefix(out, "❌ "), out)

	out, err = h.exec("history", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "hello there", "newest first")
	assert.Contains(t, lines[0], "voice")
	assert.Contains(t, lines[1], "what time is it")

	out, err = h.exec("history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries analyzed: 2")
	assert.Contains(t, out, "Success rate: 50.0%")
}

func TestRootArgsRunCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.exec("what's", "the", "date")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "✅ Today is "), out)
}

func TestRunRejectsBadSource(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec("run", "--source", "fax", "mute")
	assert.Error(t, err)
}

func TestHistoryExportAndClear(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec("run", "what", "time", "is", "it")
	require.NoError(t, err)

	_, err = h.exec("history", "export")
	assert.EqualError(t, err, commands.ErrOutRequired)

	dest := filepath.Join(t.TempDir(), "history.jsonl")
	out, err := h.exec("history", "export", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 records")

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"text":"what time is it"`)

	out, err = h.exec("history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, commands.MsgHistoryCleared)

	out, err = h.exec("history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, commands.MsgNoHistoryRecorded)
}

func TestInfoRejectsUnknownKind(t *testing.T) {
	h := newHarness(t)
	_, err := h.exec("info", "gpu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown info kind")
}

func TestDoctor(t *testing.T) {
	h := newHarness(t)
	out, err := h.exec("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] Config file")
	assert.Contains(t, out, "[WARN] Storage - memory driver")
	assert.Contains(t, out, "Guardrail")
	assert.Contains(t, out, "warnings, 0 errors")
}
