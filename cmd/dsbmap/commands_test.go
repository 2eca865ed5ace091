package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dsbmap/internal/config"
	"github.com/dshills/dsbmap/internal/layout"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/pkg/types"
)

const datasetCSV = `Entry,Entry name,Protein names,Disulfide bond,Glycosylation,Length,New_Length,Orientation,topology,Sequon list,Cysteine positions
P06213,INSR_HUMAN,Insulin receptor,"['10 30', '30 80']",['12'],118,120,0o40-40i60-60o,0o38-38i,"['12', '70']","['9', '29', '79']"
Q00001,EMPTY_HUMAN,No annotations,[],[],50,50,o,o,[],[]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvLogLevel, "")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func importDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "dataset.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(datasetCSV), 0644))

	db := filepath.Join(dir, "db", "catalog.db")
	out, err := run(t, "--db", db, "--offline", "--log-level", "error", "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "read: 2  stored: 2  skipped: 0  invalid: 0")
	return db
}

func TestDecodeCmd(t *testing.T) {
	out, err := run(t, "decode", "0o40-40i60-60o", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "SIDE")
	assert.Contains(t, out, "inside")
	assert.Contains(t, out, "normalized: 0o40-40i60-60o")

	_, err = run(t, "decode", "0x10", "30")
	assert.ErrorIs(t, err, types.ErrFormat)

	_, err = run(t, "decode", "o", "ten")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: "+version)
	assert.Contains(t, out, "SQLite Driver:")
}

func TestImportShowSearch(t *testing.T) {
	db := importDataset(t)

	out, err := run(t, "--db", db, "--offline", "show", "--summary", "P06213")
	require.NoError(t, err)
	var summary types.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 2, summary.Disulfides)
	assert.Equal(t, 1, summary.IntraDomain)
	assert.Equal(t, 1, summary.InterDomain)

	out, err = run(t, "--db", db, "--offline", "show", "P06213")
	require.NoError(t, err)
	assert.Contains(t, out, `"INSR_HUMAN"`)

	_, err = run(t, "--db", db, "--offline", "show", "P99999")
	assert.ErrorIs(t, err, types.ErrNotFound)

	out, err = run(t, "--db", db, "--offline", "search", "insulin")
	require.NoError(t, err)
	assert.Contains(t, out, "P06213")
	assert.NotContains(t, out, "Q00001")
}

func TestLayoutCmd(t *testing.T) {
	db := importDataset(t)

	out, err := run(t, "--db", db, "--offline", "layout", "--window", "0:50", "--hide", "glycosylation", "P06213")
	require.NoError(t, err)

	var scene layout.Scene
	require.NoError(t, json.Unmarshal([]byte(out), &scene))
	assert.Equal(t, "P06213", scene.ID)
	assert.Equal(t, 120, scene.Length)
	require.NotNil(t, scene.Window)
	assert.Empty(t, scene.Full.Glycosylation)
	assert.Len(t, scene.Full.Bonds, 2)

	_, err = run(t, "--db", db, "--offline", "layout", "--window", "50", "P06213")
	assert.Error(t, err)

	_, err = run(t, "--db", db, "--offline", "layout", "--hide", "spine", "P06213")
	assert.Error(t, err)
}

func TestListDeleteCmd(t *testing.T) {
	db := importDataset(t)

	out, err := run(t, "--db", db, "--offline", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "P06213")
	assert.Contains(t, out, "Q00001")

	out, err = run(t, "--db", db, "--offline", "delete", "q00001")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted Q00001")

	out, err = run(t, "--db", db, "--offline", "list", "-n", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Q00001")

	_, err = run(t, "--db", db, "--offline", "delete", "Q00001")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
