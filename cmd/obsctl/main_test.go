package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProbeCommand(t *testing.T) {
	addr := startTestIngest(t, "live")

	out, err := runCLI(t, "probe", "rtmp://"+addr+"/live")
	require.NoError(t, err)
	assert.Contains(t, out, "reachable")
}

func TestProbeCommandUsesConfiguredServer(t *testing.T) {
	addr := startTestIngest(t, "live")
	t.Setenv("OBSCTL_SERVER", "rtmp://"+addr+"/live")

	out, err := runCLI(t, "probe", "--timeout", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, addr)
}

func TestModulesCommandStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obs-outputs.so"), nil, 0o600))
	t.Setenv("OBSCTL_MODULES_DIR", dir)
	t.Setenv("OBSCTL_MODULE_BINARY", "obs-outputs.so")

	out, err := runCLI(t, "modules")
	require.NoError(t, err)
	assert.Contains(t, out, "locator:     static")
	assert.Contains(t, out, "modules dir: "+dir+string(filepath.Separator))
	assert.Contains(t, out, filepath.Join(dir, "obs-outputs.so")+"\n")
	assert.Contains(t, out, "output:      rtmp_output (from obs-outputs)")
}

func TestDotEnvLoaded(t *testing.T) {
	addr := startTestIngest(t, "live")
	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte("OBSCTL_SERVER=rtmp://"+addr+"/live\n"), 0o600))
	t.Setenv("OBSCTL_SERVER", "")
	require.NoError(t, os.Unsetenv("OBSCTL_SERVER"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", env, "probe"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), addr)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, loadDotEnv(""))
}

func TestRootRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown: true\n"), 0o600))
	_, err := runCLI(t, "--config", path, "probe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config field")
}
