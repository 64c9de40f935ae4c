package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"UKSC/smith.txt": "CASE: Smith v Jones [2020] UKSC 12\n\nThe appeal is dismissed. We follow [1932] AC 562.\n",
		"sg/tan.txt":     "COURT: SGCA\n\nThe court applied [2019] SGCA 5 and Chitty on Contracts.\n",
		"misc/lost.txt":  "No court can be found for this text.\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAnalyzeToStdout(t *testing.T) {
	input := writeCorpus(t)

	stdout, stderr, err := execute(t, "analyze", "--input", input, "--log-level", "error")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "document_id", records[0][0])
	assert.Equal(t, "UKSC/smith", records[1][0])
	assert.Equal(t, "sg/tan", records[2][0])

	assert.Contains(t, stderr, "Succeeded: 2 | Failed: 1")
	assert.Contains(t, stderr, "misc/lost")
}

func TestAnalyzeToFiles(t *testing.T) {
	input := writeCorpus(t)
	out := t.TempDir()
	output := filepath.Join(out, "metrics.json")
	metrics := filepath.Join(out, "juriscope.prom")

	stdout, _, err := execute(t, "analyze", "--input", input, "--output", output,
		"--metrics-file", metrics, "--workers", "2", "--court", "HCA", "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"misc/lost"`)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "juriscope_documents_total")
}

func TestAnalyzeCountsLoadFailures(t *testing.T) {
	input := writeCorpus(t)
	manifest := "documents:\n  - id: ghost\n    file: ghost.txt\n    court: UKSC\n"
	require.NoError(t, os.WriteFile(filepath.Join(input, "manifest.yaml"), []byte(manifest), 0o644))
	out := t.TempDir()
	metrics := filepath.Join(out, "juriscope.prom")
	failuresFile := filepath.Join(out, "failures.json")

	_, stderr, err := execute(t, "analyze", "--input", input, "--metrics-file", metrics,
		"--failures-json", failuresFile, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Succeeded: 2 | Failed: 2")
	assert.Contains(t, stderr, "ghost")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "juriscope_last_run_failures 2\n")

	data, err := os.ReadFile(failuresFile)
	require.NoError(t, err)
	var failures []map[string]string
	require.NoError(t, json.Unmarshal(data, &failures))
	require.Len(t, failures, 2)
	assert.Equal(t, "ghost", failures[0]["document_id"])
	assert.Equal(t, "load", failures[0]["stage"])
	assert.Equal(t, "misc/lost", failures[1]["document_id"])
	assert.Equal(t, "metadata", failures[1]["kind"])
}

func TestAnalyzeErrors(t *testing.T) {
	_, _, err := execute(t, "analyze")
	assert.Error(t, err)

	_, _, err = execute(t, "analyze", "--input", t.TempDir(), "--court", "XYZ")
	assert.Error(t, err)

	_, _, err = execute(t, "analyze", "--input", t.TempDir(), "--format", "sqlite")
	assert.Error(t, err)

	_, _, err = execute(t, "analyze", "--input", filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestListCommands(t *testing.T) {
	stdout, _, err := execute(t, "courts", "--jurisdiction", "sg")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SGCA")
	assert.NotContains(t, stdout, "UKSC")

	stdout, _, err = execute(t, "grammars", "--reporters")
	require.NoError(t, err)
	assert.Contains(t, stdout, "GRAMMAR")
	assert.Contains(t, stdout, "report")

	stdout, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "juriscope "+version+"\n", stdout)
}

func TestCourtsFileExtendsRegistry(t *testing.T) {
	courts := filepath.Join(t.TempDir(), "courts.yaml")
	require.NoError(t, os.WriteFile(courts, []byte("courts:\n  - code: FCA\n    name: Federal Court of Australia\n    jurisdiction: AU\n"), 0o644))

	stdout, _, err := execute(t, "courts", "--courts-file", courts)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FCA")
	assert.Contains(t, stdout, "UKSC")
	assert.Contains(t, stdout, "SGCA")
}
