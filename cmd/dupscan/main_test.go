package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testdesk/backend/internal/similarity"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-dict"))
	err := cmd.Execute()
	return out.String(), err
}

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "texts.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "", "compare", "Login fails", "login FAILS!")
	require.NoError(t, err)
	assert.Equal(t, "1.0000\n", out)

	out, err = execute(t, "", "compare", "login fails", "export fails", "--method", "jaccard")
	require.NoError(t, err)
	assert.Equal(t, "0.3333\n", out)
}

func TestCompare_JSON(t *testing.T) {
	out, err := execute(t, "", "compare", "login fails", "export fails", "-m", "jaccard", "--json")
	require.NoError(t, err)

	var resp struct {
		Score  float64 `json:"score"`
		Method string  `json:"method"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 1.0/3.0, resp.Score, 1e-9)
	assert.Equal(t, "jaccard", resp.Method)
}

func TestCompare_Errors(t *testing.T) {
	_, err := execute(t, "", "compare", "a", "b", "--method", "soundex")
	assert.ErrorContains(t, err, "unsupported method")

	_, err = execute(t, "", "compare", "only one")
	assert.ErrorContains(t, err, "accepts 2 arg(s)")
}

func TestSimilar(t *testing.T) {
	path := writeLines(t,
		"Export report as PDF",
		"",
		"Login button crashes app",
		"login button crashes the app",
	)

	out, err := execute(t, "", "similar", "Login button crashes app", "--file", path, "--threshold", "0.5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2] 1.0000  Login button crashes app", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasSuffix(lines[1], "login button crashes the app"))

	out, err = execute(t, "", "similar", "Login button crashes app", "-f", path, "-t", "0.5", "-n", "1", "--json")
	require.NoError(t, err)
	var matches []similarity.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	assert.Equal(t, []similarity.Match{{Index: 1, Score: 1.0}}, matches)
}

func TestSimilar_NoMatches(t *testing.T) {
	out, err := execute(t, "Export report as PDF\n", "similar", "Login fails", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Equal(t, "No similar texts found.\n", out)
}

func TestSimilar_MissingFile(t *testing.T) {
	_, err := execute(t, "", "similar", "x", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestKeywords(t *testing.T) {
	out, err := execute(t, "", "keywords", "timeout on export, export retry, export", "--top", "2")
	require.NoError(t, err)
	assert.Equal(t, "export\ntimeout\n", out)

	out, err = execute(t, "", "keywords", "", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCluster(t *testing.T) {
	stdin := "login fails\nexport fails\nlogin fails\nexport fails\n"

	out, err := execute(t, stdin, "cluster", "--threshold", "0.99", "--json")
	require.NoError(t, err)
	var clusters [][]int
	require.NoError(t, json.Unmarshal([]byte(out), &clusters))
	assert.Equal(t, [][]int{{0, 2}, {1, 3}}, clusters)

	out, err = execute(t, stdin, "cluster", "-t", "0.99")
	require.NoError(t, err)
	assert.Contains(t, out, "Cluster 1:\n  [1] login fails\n  [3] login fails\n")
	assert.Contains(t, out, "Cluster 2:\n  [2] export fails\n  [4] export fails\n")
}

func TestFeatures(t *testing.T) {
	out, err := execute(t, "", "features", "Login fails. Retry fails!", "--json")
	require.NoError(t, err)

	var f similarity.Features
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, 3, f.SentenceCount)
	assert.Equal(t, 4, f.TokenCount)

	out, err = execute(t, "", "features", "Login fails. Retry fails!")
	require.NoError(t, err)
	assert.Contains(t, out, "Sentences:         3\n")
	assert.Contains(t, out, "  fails: 2\n")
}

func TestResultsGoToStdout(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	stderr := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"compare", "login fails", "export fails", "-m", "jaccard", "--json", "--no-dict"})
	require.NoError(t, cmd.Execute())
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"method": "jaccard"`)
	assert.Empty(t, stderr.String())
}
