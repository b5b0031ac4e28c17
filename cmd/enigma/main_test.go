package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollux/enigma/internal/enigma"
)

const m3Message = "* B I II III AAA\nAAAAA\n"

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{}, args...))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPresetFromStdin(t *testing.T) {
	t.Parallel()

	out, logs, err := execute(t, m3Message, "--preset", "m3")
	require.NoError(t, err)
	assert.Equal(t, "BDZGO\n", out)
	assert.Contains(t, logs, `"msg":"machine loaded"`)
	assert.Contains(t, logs, `"source":"preset m3"`)
	assert.NotContains(t, logs, "symbol converted")
}

func TestLogsCarryMessageIDAndErrorEvents(t *testing.T) {
	t.Parallel()

	out, logs, err := execute(t, m3Message+"* B I I III AAA\nAAAAA\n", "-p", "m3")
	require.Error(t, err)
	assert.ErrorIs(t, err, enigma.ErrRotorAssignment)
	assert.Equal(t, "BDZGO\n", out)

	assert.Contains(t, logs, `"hostname":`)
	assert.Regexp(t, `"msg":"machine configured".*"trace_id":"[0-9a-f-]{36}"`, logs)
	assert.Regexp(t, `Error event: setting line rejected, details: \{.*"trace_id":"[0-9a-f-]{36}"`, logs)
	assert.Contains(t, logs, "used more than once")
}

func TestVerboseTracesSymbols(t *testing.T) {
	t.Parallel()

	_, logs, err := execute(t, m3Message, "-p", "m3", "-v")
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(logs, `"msg":"symbol converted"`))
	assert.Contains(t, logs, `"settings":"AAB"`)
}

func TestConfigFileWithInputAndOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("* B I II III AAA\nHELLO WORLD\n"), 0o600))

	conf := filepath.Join("..", "..", "internal", "config", "testdata", "m3.yaml")
	out, _, err := execute(t, "", conf, in, outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "ILBDA AMTAZ\n", string(got))
}

func TestConfigFlag(t *testing.T) {
	t.Parallel()

	conf := filepath.Join("..", "..", "internal", "config", "testdata", "default.conf")
	in := filepath.Join("..", "..", "internal", "session", "testdata", "hiawatha.in")
	want, err := os.ReadFile(filepath.Join("..", "..", "internal", "session", "testdata", "hiawatha.out"))
	require.NoError(t, err)

	out, _, err := execute(t, "", "--config", conf, in)
	require.NoError(t, err)
	assert.Equal(t, string(want), out)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("ENIGMA_PRESET", "m3")
	t.Setenv("ENIGMA_GROUP", "2")

	out, _, err := execute(t, m3Message)
	require.NoError(t, err)
	assert.Equal(t, "BD ZG O\n", out)
}

func TestRootErrors(t *testing.T) {
	t.Parallel()

	conf := filepath.Join("..", "..", "internal", "config", "testdata", "m3.yaml")
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
	}{
		{name: "no description", args: nil, wantErr: enigma.ErrInvalidConfig},
		{name: "unknown preset", args: []string{"--preset", "m9"}, wantErr: enigma.ErrInvalidConfig},
		{name: "config and preset", args: []string{"-c", conf, "-p", "m3"}, wantErr: enigma.ErrInvalidConfig},
		{name: "missing config file", args: []string{filepath.Join(t.TempDir(), "none.conf")}, wantErr: os.ErrNotExist},
		{name: "bad setting line", stdin: "* B I II AAA\n", args: []string{"-p", "m3"}, wantErr: enigma.ErrRotorAssignment},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, _, err := execute(t, "", "-p", "m3", "a", "b", "c")
	assert.ErrorContains(t, err, "too many arguments")
}

func TestPresetCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "preset")
	require.NoError(t, err)
	assert.Equal(t, "m3\nm4\n", out)

	out, _, err = execute(t, "", "preset", "m4")
	require.NoError(t, err)
	assert.Contains(t, out, "slots: 5")
	assert.Contains(t, out, "name: Gamma")

	_, _, err = execute(t, "", "preset", "m9")
	assert.ErrorIs(t, err, enigma.ErrInvalidConfig)
}
