package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs casim with args against an isolated config and database.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfg := filepath.Join(dir, "casim.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))

	return executeWith(t, cfg, filepath.Join(dir, "runs.db"), stdin, args...)
}

func executeWith(t *testing.T, cfg, db, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg, "--db", db}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const (
	pile     = "0 0 0\n0 5 0\n0 0 0\n"
	plus     = "0 1 0\n1 1 1\n0 1 0\n"
	blinkerV = "0 0 0 0 0\n0 0 1 0 0\n0 0 1 0 0\n0 0 1 0 0\n0 0 0 0 0\n"
	blinkerH = "0 0 0 0 0\n0 0 0 0 0\n0 1 1 1 0\n0 0 0 0 0\n0 0 0 0 0\n"
)

func TestRules(t *testing.T) {
	out, _, err := execute(t, "", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "sandpile")
	assert.Contains(t, out, "Game of Life")
}

func TestRunUntilStable(t *testing.T) {
	out, _, err := execute(t, pile, "run", "preset:sandpile")
	require.NoError(t, err)
	assert.Equal(t, plus, out)

	out, _, err = execute(t, pile, "run", "preset:topple", "--async", "--seed", "9")
	require.NoError(t, err)
	assert.Equal(t, plus, out)
}

func TestRunRoleMode(t *testing.T) {
	out, _, err := execute(t, "0 1\n", "run", "1-v", "--steps", "2", "--mode", "role")
	require.NoError(t, err)
	assert.Equal(t, "# round 0\n0 1\n\n# round 1\n1 0\n\n# round 2\n0 1\n\n", out)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"never stable", "0\n", []string{"run", "preset:invert"}, "never stabilizes"},
		{"bad mode", "0\n", []string{"run", "v", "--mode", "fast"}, "unknown mode"},
		{"bad equation", "0\n", []string{"run", "v +"}, "malformed rule"},
		{"unknown preset", "0\n", []string{"run", "preset:nope"}, "unknown rule"},
		{"bad grid", "0 1\n2\n", []string{"run", "v"}, "grid"},
		{"anim without tty", "0\n", []string{"run", "v", "--mode", "anim"}, "terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunTraceAndRecord(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfg := filepath.Join(dir, "casim.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))
	db := filepath.Join(dir, "runs.db")
	tracePath := filepath.Join(dir, "trace.csv")

	_, _, err := executeWith(t, cfg, db, pile, "run", "preset:sandpile", "--trace", tracePath, "--record")
	require.NoError(t, err)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "round,"))
	assert.Len(t, lines, 3) // header, toppling round, quiet round

	out, _, err := executeWith(t, cfg, db, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "preset:sandpile")

	out, _, err = executeWith(t, cfg, db, "", "runs", "--csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "id,rule,mode,seed"))

	out, _, err = executeWith(t, cfg, db, "", "runs", "--show", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, plus))

	out, _, err = executeWith(t, cfg, db, "", "runs", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "preset:sandpile")

	out, _, err = executeWith(t, cfg, db, "", "runs", "--trace", tracePath)
	require.NoError(t, err)
	assert.Contains(t, out, "rounds:         2\n")
	assert.Contains(t, out, "accepted:       5\n")
	assert.Contains(t, out, "peak accepted:  5 in round 1\n")

	_, _, err = executeWith(t, cfg, db, "", "runs", "--delete", "preset:sandpile")
	require.NoError(t, err)
	out, _, err = executeWith(t, cfg, db, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestRunsEmpty(t *testing.T) {
	out, _, err := execute(t, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestActive(t *testing.T) {
	out, _, err := execute(t, pile, "active", "preset:sandpile")
	require.NoError(t, err)
	assert.Equal(t, plus, out)

	out, _, err = execute(t, pile, "active", "preset:sandpile", "--list")
	require.NoError(t, err)
	assert.Equal(t, "1,0\n0,1\n1,1\n2,1\n1,2\n", out)
}

func TestTableBuildInfoRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "life.tbl")

	_, _, err := execute(t, "", "table", "build", "preset:life", "--out", path)
	require.NoError(t, err)

	out, _, err := execute(t, "", "table", "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "entries:     512")
	assert.Contains(t, out, "states:      2")

	out, _, err = execute(t, blinkerV, "run", "table:"+path, "--steps", "1")
	require.NoError(t, err)
	assert.Equal(t, blinkerH, out)

	_, _, err = execute(t, "", "table", "build", "v + 1", "--out", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--states")
}

func TestSuper(t *testing.T) {
	out, _, err := execute(t, "3 3 3\n3 3 3\n3 3 3\n", "super")
	require.NoError(t, err)
	assert.Equal(t, "1 2 1\n2 3 2\n1 2 1\n", out)
}

func TestDrop(t *testing.T) {
	out, _, err := execute(t, "0 0 0\n0 0 0\n0 0 0\n", "drop", "preset:sandpile", "--at", "1,1", "--input", "v + 4")
	require.NoError(t, err)
	assert.Equal(t, "0 1 0\n1 0 1\n0 1 0\n", out)

	_, _, err = execute(t, "0\n", "drop", "preset:sandpile", "--at", "3,3")
	require.Error(t, err)

	out, _, err = execute(t, "0 0\n0 0\n", "drop", "preset:sandpile", "--cycles", "3", "--seed", "5")
	require.NoError(t, err)
	// Three grains never topple on a 2x2 grid
	assert.Equal(t, 3, strings.Count(out, "1")+2*strings.Count(out, "2")+3*strings.Count(out, "3"))
}

func TestParseHelpers(t *testing.T) {
	p, err := parsePoint("2, -1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.X)
	assert.Equal(t, -1, p.Y)

	_, err = parsePoint("2")
	assert.Error(t, err)

	r, err := parseRect("1,2,3,4")
	require.NoError(t, err)
	assert.Equal(t, 3, r.W)
	assert.Equal(t, 4, r.H)

	_, err = parseRect("1,2,3")
	assert.Error(t, err)
}
