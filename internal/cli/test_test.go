package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// copyScenarios copies the scenario fixtures into a temp dir next to a copy
// of the specs they reference.
func copyScenarios(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		"specs/catalog.cue",
		"scenarios/adults.yaml",
		"scenarios/by_grade.yaml",
	} {
		data, err := os.ReadFile(filepath.Join("testdata", rel))
		require.NoError(t, err)
		dst := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
		require.NoError(t, os.WriteFile(dst, data, 0644))
	}
	return filepath.Join(root, "scenarios")
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCmd(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := runTestCmd(t, &RootOptions{Format: "text"}, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "text"}, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "json"}, t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommandPassingScenarios(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "text"}, filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	assert.Contains(t, output, "✓ adults")
	assert.Contains(t, output, "✓ by_grade")
	assert.Contains(t, output, "Test Summary: 2 passed, 0 failed, 2 total")
}

func TestTestCommandSingleFileJSON(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "json"}, filepath.Join("testdata", "scenarios", "adults.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandFilter(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "text"}, filepath.Join("testdata", "scenarios"), "--filter", "by_*")
	require.NoError(t, err)

	assert.Contains(t, output, "✓ by_grade")
	assert.NotContains(t, output, "adults")
	assert.Contains(t, output, "1 total")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := copyScenarios(t)
	goldenDir := filepath.Join(dir, "golden")
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "adults.golden"), []byte(`{"stale":true}`), 0644))

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ adults")
	assert.Contains(t, output, "does not match golden file")
	assert.Contains(t, output, "✓ by_grade")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := copyScenarios(t)
	goldenDir := filepath.Join(t.TempDir(), "golden")

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, dir, "--update", "--golden-dir", goldenDir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ adults (golden updated)")

	written, err := os.ReadFile(filepath.Join(goldenDir, "adults.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "scenarios", "golden", "adults.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// A second run compares against what was written.
	output, err = runTestCmd(t, &RootOptions{Format: "text"}, dir, "--golden-dir", goldenDir)
	require.NoError(t, err)
	assert.Contains(t, output, "2 passed")
}

func TestTestCommandFailingAssertion(t *testing.T) {
	dir := copyScenarios(t)
	scenario := `name: wrong
description: "expects the wrong terminal"
specs:
  - ../specs/catalog.cue
query: adults
assertions:
  - type: terminal_kind
    kind: group
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0644))

	output, err := runTestCmd(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestTestCommandBadScenarioFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [unclosed"), 0644))

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Contains(t, output, "✗ broken.yaml")
	assert.Contains(t, output, "failed to load scenario")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "x.golden"), goldenFilePath("", filepath.Join("s", "x.yaml"), "x"))
	assert.Equal(t, filepath.Join("g", "name.golden"), goldenFilePath("g", filepath.Join("s", "x.yaml"), "name"))
}
