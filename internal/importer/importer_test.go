package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dsbmap/internal/annotation"
	"github.com/dshills/dsbmap/internal/catalog"
	"github.com/dshills/dsbmap/internal/storage"
)

const datasetCSV = `Entry,Entry name,Protein names,Disulfide bond,Glycosylation,Length,New_Length,Orientation,topology,Sequon list,Cysteine positions
P06213,INSR_HUMAN,Insulin receptor,"['10 30', '30 80']",['12'],118,120,0o40-40i60-60o,0o38-38i,"['12', '70']","['9', '29', '79']"
Q00001,EMPTY_HUMAN,No annotations,[],[],50,50,o,o,[],[]
BAD001,BAD_HUMAN,One-ended bond,['10'],[],50,50,o,o,[],[]
BAD002,BAD_HUMAN,Broken length,[],[],50,fifty,o,o,[],[]
`

const topologyCSV = `Name,Protein name,Orientation,Length
P00533,Epidermal growth factor receptor,0o645-645i,1210
P00534,Gapped,0o10-20i,30
P00535,Broken,0x10,30
`

func setupTestStorage(t *testing.T) *storage.SQLiteStorage {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportReader_Dataset(t *testing.T) {
	ctx := context.Background()
	store := setupTestStorage(t)
	imp := New(store, nil)

	stats, err := imp.ImportReader(ctx, strings.NewReader(datasetCSV), "dataset.csv", nil)
	require.NoError(t, err)

	assert.Equal(t, catalog.LayoutDataset, stats.Layout)
	assert.Equal(t, 4, stats.RowsRead)
	assert.Equal(t, 2, stats.RowsStored)
	assert.Equal(t, 0, stats.RowsSkipped)
	assert.Equal(t, 2, stats.RowsInvalid)
	require.Len(t, stats.ErrorMessages, 2)
	assert.NotEmpty(t, stats.RunID)

	rec, err := store.GetRecord(ctx, "P06213")
	require.NoError(t, err)
	assert.Equal(t, storage.SourceDataset, rec.Source)
	assert.True(t, rec.Complete)
	assert.Equal(t, 120, rec.Length)
	assert.Equal(t, 118, rec.OldLength)
	assert.Equal(t, "0o38-38i", rec.OldTopology)
	assert.Equal(t, stats.RunID, rec.ImportRunID)

	_, err = store.GetRecord(ctx, "BAD001")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	run, err := store.GetImportRun(ctx, stats.RunID)
	require.NoError(t, err)
	assert.Equal(t, storage.RunCompleted, run.Status)
	assert.Equal(t, 4, run.RowsRead)
	assert.Equal(t, 2, run.RowsStored)
	assert.Equal(t, 2, run.RowsInvalid)
	assert.NotNil(t, run.CompletedAt)
}

func TestImportReader_Incremental(t *testing.T) {
	ctx := context.Background()
	store := setupTestStorage(t)
	imp := New(store, nil)

	_, err := imp.ImportReader(ctx, strings.NewReader(datasetCSV), "dataset.csv", nil)
	require.NoError(t, err)

	stats, err := imp.ImportReader(ctx, strings.NewReader(datasetCSV), "dataset.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RowsStored)
	assert.Equal(t, 2, stats.RowsSkipped)

	stats, err = imp.ImportReader(ctx, strings.NewReader(datasetCSV), "dataset.csv", &Config{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RowsStored)
	assert.Equal(t, 0, stats.RowsSkipped)

	latest, err := store.LatestImportRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.RunID, latest.ID)
}

func TestImportReader_Topology(t *testing.T) {
	ctx := context.Background()
	store := setupTestStorage(t)
	imp := New(store, nil)

	stats, err := imp.ImportReader(ctx, strings.NewReader(topologyCSV), "topology.csv", &Config{BatchSize: 1, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, catalog.LayoutTopology, stats.Layout)
	assert.Equal(t, 3, stats.RowsRead)
	assert.Equal(t, 2, stats.RowsStored)
	assert.Equal(t, 1, stats.RowsInvalid)

	rec, err := store.GetRecord(ctx, "P00533")
	require.NoError(t, err)
	assert.Equal(t, storage.SourceTopology, rec.Source)
	assert.False(t, rec.Complete)

	// Once completed from UniProt, an unchanged topology row leaves it alone
	rec.Source = storage.SourceUniProt
	rec.Complete = true
	rec.DisulfideBonds = []string{"10 20"}
	rec.ComputeContentHash()
	require.NoError(t, store.UpsertRecord(ctx, rec))

	stats, err = imp.ImportReader(ctx, strings.NewReader(topologyCSV), "topology.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RowsStored)
	assert.Equal(t, 2, stats.RowsSkipped)

	rec, err = store.GetRecord(ctx, "P00533")
	require.NoError(t, err)
	assert.Equal(t, storage.SourceUniProt, rec.Source)
	assert.Equal(t, []string{"10 20"}, rec.DisulfideBonds)
}

func TestImportReader_DuplicateAccessionLastRowWins(t *testing.T) {
	ctx := context.Background()
	store := setupTestStorage(t)
	imp := New(store, nil)

	var b strings.Builder
	b.WriteString("Name,Protein name,Orientation,Length\n")
	for length := 11; length <= 40; length++ {
		fmt.Fprintf(&b, "P00533,Receptor,o,%d\n", length)
	}

	stats, err := imp.ImportReader(ctx, strings.NewReader(b.String()), "dups.csv", &Config{BatchSize: 1, Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, 30, stats.RowsRead)
	assert.Equal(t, 30, stats.RowsStored)

	rec, err := store.GetRecord(ctx, "P00533")
	require.NoError(t, err)
	assert.Equal(t, 40, rec.Length)
}

func TestImportReader_StrictPartition(t *testing.T) {
	store := setupTestStorage(t)
	imp := New(store, nil)

	stats, err := imp.ImportReader(context.Background(), strings.NewReader(topologyCSV), "topology.csv",
		&Config{Build: annotation.Options{StrictPartition: true}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RowsStored)
	assert.Equal(t, 2, stats.RowsInvalid)
}

func TestImportReader_Errors(t *testing.T) {
	store := setupTestStorage(t)
	imp := New(store, nil)

	_, err := imp.ImportReader(context.Background(), strings.NewReader("a,b\n1,2\n"), "x.csv", nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownLayout)

	ok, _ := imp.lock.TryAcquire("other.csv")
	require.True(t, ok)
	_, err = imp.ImportReader(context.Background(), strings.NewReader(datasetCSV), "dataset.csv", nil)
	assert.ErrorIs(t, err, ErrImportInProgress)
	assert.Contains(t, err.Error(), "other.csv")
	imp.lock.Release()
}

func TestImportReader_Cancelled(t *testing.T) {
	store := setupTestStorage(t)
	imp := New(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.ImportReader(ctx, strings.NewReader(datasetCSV), "dataset.csv", nil)
	assert.Error(t, err)
}

func TestImport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0o644))

	store := setupTestStorage(t)
	stats, err := New(store, nil).Import(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RowsStored)

	_, err = New(store, nil).Import(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestImportLock(t *testing.T) {
	var l ImportLock
	assert.Equal(t, "", l.Holder())

	ok, _ := l.TryAcquire("a.csv")
	assert.True(t, ok)
	assert.Equal(t, "a.csv", l.Holder())

	ok, holder := l.TryAcquire("b.csv")
	assert.False(t, ok)
	assert.Equal(t, "a.csv", holder)

	l.Release()
	ok, _ = l.TryAcquire("b.csv")
	assert.True(t, ok)
	assert.Equal(t, "b.csv", l.Holder())
}
