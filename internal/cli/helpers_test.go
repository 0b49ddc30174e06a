package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDictionary = `{
    "1": ["allqu", "dog"],
    "2": ["purin", "walks"],
    "3": ["wasi", "house"],
    "4": ["hatun", "big"],
    "10": ["tukuy", "clause"]
}`

const testActions = `{
    "1": ["allqu", "bark"],
    "2": ["purin", "walk", "run"]
}`

const testGrammar = `{
    "nounRule": {
        "1": [{"type": "DefinitionType", "value": 1}, {"type": "OtherType", "value": 2}],
        "3": [{"type": "DefinitionType", "value": "noun"}]
    },
    "verbRule": {
        "2": [{"type": "DefinitionType", "value": 2}, {"type": "TenseType", "value": 1}, {"type": "MoodType", "value": 1}]
    },
    "clauseRule": {
        "10": [
            {"type": "DefinitionType", "value": 1},
            {"type": "OtherType", "value": 2},
            {"type": "DefinitionType", "value": 2},
            {"type": "TenseType", "value": 1},
            {"type": "MoodType", "value": 1}
        ]
    }
}`

// fixture is a temp directory holding the three tables and a config file.
type fixture struct {
	dir    string
	config string
}

func (f fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

// createFixture writes the test tables; actions overrides the action table
// when non-empty.
func createFixture(t *testing.T, actions string) fixture {
	t.Helper()
	if actions == "" {
		actions = testActions
	}
	dir := t.TempDir()
	files := map[string]string{
		"dics.json":     testDictionary,
		"actions.json":  actions,
		"grammars.json": testGrammar,
		"salin.yaml": `dictionary: dics.json
actions: actions.json
grammar: grammars.json
min_match: 5
history: history.db
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return fixture{dir: dir, config: filepath.Join(dir, "salin.yaml")}
}

// execute runs the root command against the fixture config and returns
// stdout.
func execute(t *testing.T, f fixture, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", f.config}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData parses a JSON CLIResponse and returns its data payload.
func decodeData(t *testing.T, out string) any {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}
