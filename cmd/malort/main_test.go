package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/malort/internal/config"
	"github.com/usestring/malort/pkg/manifest"
	"github.com/usestring/malort/pkg/stats"
)

const rows = `{"id": 1, "name": "ann", "score": 1.5}
{"id": 2, "name": "bob", "score": 2.25}
`

func execute(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	cfg := config.Load()
	cfg.LogFile = ""
	cfg.LogLevel = "error"
	cmd := newRootCmd(fsys, cfg)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func testFS(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/a.ndjson", []byte(rows), 0o644))
	return fsys
}

func TestAnalyzeCmd_JSONReport(t *testing.T) {
	fsys := testFS(t)
	out, err := execute(t, fsys, "analyze", "/in", "--format", "json", "--seed", "7",
		"--stats-out", "/out/stats.json", "--jsonpaths", "/out/paths.json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 3)

	data, err := afero.ReadFile(fsys, "/out/paths.json")
	require.NoError(t, err)
	var paths manifest.JSONPaths
	require.NoError(t, json.Unmarshal(data, &paths))
	assert.Equal(t, []string{"$['id']", "$['name']", "$['score']"}, paths.Paths)

	data, err = afero.ReadFile(fsys, "/out/stats.json")
	require.NoError(t, err)
	m := stats.NewMap()
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []string{"id", "name", "score"}, m.Paths())
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	fsys := testFS(t)

	_, err := execute(t, fsys, "analyze", "/missing")
	assert.Error(t, err)

	_, err = execute(t, fsys, "analyze", "/in", "--format", "xml")
	assert.ErrorContains(t, err, "table, csv, json, yaml, parquet")

	_, err = execute(t, fsys, "analyze", "/in", "--mapper", "oracle")
	assert.Error(t, err)

	_, err = execute(t, fsys, "analyze", "/in", "--select", ".[")
	assert.Error(t, err)
}

func TestMergeCmd(t *testing.T) {
	fsys := testFS(t)
	require.NoError(t, afero.WriteFile(fsys, "/in2/b.ndjson", []byte(`{"id": 300, "extra": true}`+"\n"), 0o644))

	_, err := execute(t, fsys, "analyze", "/in", "--stats-out", "/s/a.json", "--output", "/s/a.txt")
	require.NoError(t, err)
	_, err = execute(t, fsys, "analyze", "/in2", "--stats-out", "/s/b.json", "--output", "/s/b.txt")
	require.NoError(t, err)

	out, err := execute(t, fsys, "merge", "/s/a.json", "/s/b.json", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "extra,extra,boolean,1")
	assert.Contains(t, out, "id,id,integer,3")
}

func TestDDLCmd(t *testing.T) {
	fsys := testFS(t)
	out, err := execute(t, fsys, "ddl", "/in", "--table", "people", "--mapper", "postgres", "--jsonpaths", "/out/paths.json")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE "people"`)
	assert.Contains(t, out, `"name" char(3)`)

	exists, err := afero.Exists(fsys, "/out/paths.json")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = execute(t, fsys, "ddl", "/in")
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	fsys := testFS(t)
	_, err := execute(t, fsys, "analyze", "/in", "--schema-out", "/out/schema.json", "--output", "/out/report.txt")
	require.NoError(t, err)

	out, err := execute(t, fsys, "validate", "/in", "--schema", "/out/schema.json")
	require.NoError(t, err)
	assert.Contains(t, out, "matching: 2")

	require.NoError(t, afero.WriteFile(fsys, "/bad/a.ndjson", []byte(`{"id": "one", "name": "x", "score": 1}`+"\n"), 0o644))
	out, err = execute(t, fsys, "validate", "/bad", "--schema", "/out/schema.json")
	assert.ErrorIs(t, err, errMismatch)
	assert.Contains(t, out, "failed: 1")
}
