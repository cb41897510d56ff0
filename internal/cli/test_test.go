package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := runCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, _, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, _, err := runCLI(t, "test", scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ wrap_unwrap_lifecycle")
	assert.Contains(t, out, "✓ wrap_rejections")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTestCommandFilterAndJSON(t *testing.T) {
	out, _, err := runCLI(t, "test", scenariosDir, "--filter", "wrap_unwrap_*", "--format", "json")
	require.NoError(t, err)
	resp := decode[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "wrap_unwrap_lifecycle", resp.Data.Scenarios[0].Name)

	out, _, err = runCLI(t, "test", scenariosDir, "--filter", "nothing*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandGoldenUpdateAndMismatch(t *testing.T) {
	golden := t.TempDir()
	scenario := filepath.Join(scenariosDir, "wrap_unwrap_lifecycle.yaml")

	out, _, err := runCLI(t, "test", scenario, "--golden-dir", golden, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	written, err := os.ReadFile(filepath.Join(golden, "wrap_unwrap_lifecycle.golden"))
	require.NoError(t, err)
	expected, err := os.ReadFile("../harness/testdata/golden/wrap_unwrap_lifecycle.golden")
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(written))

	require.NoError(t, os.WriteFile(filepath.Join(golden, "wrap_unwrap_lifecycle.golden"), []byte("{}\n"), 0o644))
	out, _, err = runCLI(t, "test", scenario, "--golden-dir", golden)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandReportsBrokenScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	out, _, err := runCLI(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, "broken.yaml", resp.Data.Scenarios[0].Name)
}
