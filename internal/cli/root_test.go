package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "types", "ddl", "ping", "query", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "host", "port", "database", "user", "password", "timezone", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCmd_Version(t *testing.T) {
	chdir(t, t.TempDir())

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "chdialect v"+Version)
}

func TestRootCmd_VerboseLogsConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chdialect.yaml"), []byte("target:\n  timezone: Asia/Tokyo\n"), 0o600))

	out, errOut, err := execute(t, "types", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "DateTime")
	assert.Contains(t, errOut, "using config file")
	assert.Contains(t, errOut, "level=DEBUG")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := execute(t, "types", "--timezone", "Not/AZone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown timezone")
}

func TestRootCmd_CompletionSkipsConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chdialect.yaml"), []byte("target: [broken"), 0o600))

	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "chdialect")
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)

	NewLogger(buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(buf, true).Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), "msg=shown k=v")
}
