package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and resets the package-level flag
// variables afterwards, since cobra keeps parsed values between runs.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		configPath, dataDir = "fitlog.yaml", ""
		bmiWeight, bmiTarget = "", ""
		projDate, projWeight, projStart, projStop = "", 0, "", ""
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})
	rootCmd.SetArgs(args)
	rootCmd.SetErr(io.Discard)
	return rootCmd.Execute()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// =============================================================================
// ERRORS ARE RETURNED, NOT EXITED
// =============================================================================

func TestExecute_BadConfigReturnsError(t *testing.T) {
	// GIVEN: A config naming an unknown backend
	path := writeConfig(t, "backend: postgres\n")

	// WHEN
	err := execute(t, "--config", path, "bmi", "--weight", "180")

	// THEN: The error comes back through Execute
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestExecute_FlagErrorBeforeOpening(t *testing.T) {
	err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "project")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --date or --weight")
}

func TestExecute_CommandErrorAfterOpeningSQLite(t *testing.T) {
	// GIVEN: A SQLite backend and no height configured
	dir := t.TempDir()
	path := writeConfig(t, "backend: sqlite\ndata_dir: "+dir+"\n")

	// WHEN: bmi needs the height
	err := execute(t, "--config", path, "bmi", "--weight", "180")

	// THEN: The command fails with a returned error and the database was created
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set height_inches")
	assert.FileExists(t, filepath.Join(dir, "fitness.db"))
}

func TestExecute_BMIWithHeight(t *testing.T) {
	path := writeConfig(t, "backend: memory\nheight_inches: 70\n")

	assert.NoError(t, execute(t, "--config", path, "bmi", "--weight", "180"))
}
