package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "../harness/testdata/scenarios"

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeScenario creates a scenario with its own tables in a temp directory
// and returns the scenario path.
func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dics.json"), []byte(testDictionary), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grammars.json"), []byte(testGrammar), 0o644))
	path := filepath.Join(dir, "clause.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: clause
description: noun and verb bindings against the clause rule
dictionary: dics.json
grammar: grammars.json
words: [allqu, purin]
min_match: 3
expect:
  - {rule: clauseRule, index: "10", match_count: 5}
  - {rule: verbRule, index: "2", match_count: 3}
`), 0o644))
	return path
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandDirectory(t *testing.T) {
	out, err := runTestCommand(t, "text", scenarioDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ranked")
	assert.Contains(t, out, "✓ simple-clause")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCommand(t, "text", scenarioDir, "--filter", "rank*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	out, err = runTestCommand(t, "text", scenarioDir, "--filter", "nothing*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	_, err = runTestCommand(t, "text", scenarioDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", filepath.Join(scenarioDir, "ranked.yaml"))
	require.NoError(t, err)
	data := decodeData(t, out).(map[string]any)
	assert.Equal(t, float64(1), data["passed"])
	assert.Equal(t, float64(1), data["total"])
}

func TestTestCommandUpdateGolden(t *testing.T) {
	path := writeScenario(t)
	golden := filepath.Join(filepath.Dir(path), "golden", "clause.golden")

	out, err := runTestCommand(t, "text", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ clause (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scenario: clause\n")
	assert.Contains(t, string(data), "#1 clauseRule/10 count=5")

	out, err = runTestCommand(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ clause\n")

	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))
	out, err = runTestCommand(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "results do not match golden file")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailingExpectation(t *testing.T) {
	path := writeScenario(t)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw = bytes.Replace(raw, []byte("match_count: 3"), []byte("match_count: 4"), 1)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	out, err := runTestCommand(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"E_TEST_FAILED"`)
	assert.Contains(t, out, `"pass": false`)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "ranked.golden"), goldenFilePath(filepath.Join("scenarios", "ranked.yaml")))
}
