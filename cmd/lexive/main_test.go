package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexive/internal/logging"
)

const testConfigYAML = `prefix: "!"
data_dir: data
assets_dir: assets
unique_dir: unique
index_path: ":memory:"
reports_file: reports.txt
logging:
  level: error
watch:
  enabled: false
`

var testData = map[string]string{
	"boxes.csv":      "AE,Aeon's End,1\n",
	"card_types.csv": "G,Gem\nR,Relic\nS,Spell\n",
	"player_cards.csv": "Jade,G,2,A=2,,Gain 2$.,,,Aeon's End,,1,3\n" +
		"Opal,G,4,A=4,,Gain 3$.,,,Aeon's End,,4,\n",
}

// setupWorkspace writes a configuration and content tree and loads it.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lexive.yaml"), []byte(testConfigYAML), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0755))
	for name, body := range testData {
		require.NoError(t, os.WriteFile(filepath.Join(root, "data", name), []byte(body), 0644))
	}

	cfgPath = filepath.Join(root, "lexive.yaml")
	t.Cleanup(func() {
		cfgPath = "lexive.yaml"
		cfg = nil
		logging.Reset()
	})
	require.NoError(t, setup(false))
	return root
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestSetup_ResolvesPaths(t *testing.T) {
	root := setupWorkspace(t)
	assert.Equal(t, filepath.Join(root, "data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(root, "reports.txt"), cfg.ReportsFile)
	assert.Equal(t, ":memory:", cfg.IndexPath)
	assert.Equal(t, "!", cfg.Prefix)
}

func TestSetup_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "lexive.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_limit: 5000\n"), 0644))
	cfgPath = path
	defer func() { cfgPath = "lexive.yaml" }()

	err := setup(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_limit")
}

func TestRender(t *testing.T) {
	setupWorkspace(t)
	defer func() { renderName, renderType = "", "" }()

	tests := []struct {
		code, name, ctype string
		want              string
	}{
		{"A=3", "", "G", "Gain 3$.\n"},
		{"D=2", "Spark", "s", "Cast: Deal 2 damage.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			renderName, renderType = tt.name, tt.ctype
			cmd, out := newTestCmd()
			require.NoError(t, runRender(cmd, []string{tt.code}))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSpecial(t *testing.T) {
	setupWorkspace(t)
	renderType = "S"
	defer func() { renderType = "" }()

	cmd, out := newTestCmd()
	require.NoError(t, runSpecial(cmd, []string{"D=3;E"}))
	assert.Equal(t, "Before: !Echo\n", out.String())

	cmd, out = newTestCmd()
	require.NoError(t, runSpecial(cmd, []string{"D=3"}))
	assert.Equal(t, "No special text.\n", out.String())
}

func TestCheck(t *testing.T) {
	setupWorkspace(t)
	defer func() { checkStrict = false }()

	cmd, out := newTestCmd()
	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "Opal (Aeon's End) text mismatch:\n  generated: Gain 4$.\n  printed:   Gain 3$.\n")
	assert.True(t, strings.HasSuffix(out.String(), "2 cards checked, 1 differences, 0 errors\n"))

	checkStrict = true
	cmd, _ = newTestCmd()
	assert.Error(t, runCheck(cmd, nil))
}

func TestBotCommands(t *testing.T) {
	setupWorkspace(t)

	cmd, out := newTestCmd()
	require.NoError(t, runBotCommand(cmd, "card", []string{"AE4"}))
	assert.Equal(t, "Opal (Player card)\n", out.String())

	cmd, out = newTestCmd()
	require.NoError(t, runBotCommand(cmd, "search", []string{"gain", "3"}))
	assert.Contains(t, out.String(), "Found the following content for pattern `gain 3`:")
	assert.Contains(t, out.String(), "- Opal")

	cmd, out = newTestCmd()
	require.NoError(t, runBotCommand(cmd, "info", []string{"nothing"}))
	assert.Equal(t, "No content found matching nothing\n", out.String())
}

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"render", "special", "check", "chat", "info", "card", "box", "search", "unique", "random"} {
		assert.True(t, names[want], want)
	}
}
