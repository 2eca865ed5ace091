package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/dsbmap/internal/annotation"
	"github.com/dshills/dsbmap/internal/catalog"
	"github.com/dshills/dsbmap/internal/logging"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/internal/topology"
)

// DefaultBatchSize is the number of rows committed per transaction
const DefaultBatchSize = 200

// maxErrorMessages caps Statistics.ErrorMessages
const maxErrorMessages = 100

// ErrImportInProgress is returned when another import holds the lock
var ErrImportInProgress = errors.New("import already in progress")

// Importer loads catalog files into storage: read -> validate -> store
type Importer struct {
	storage storage.Storage
	logger  *slog.Logger
	lock    ImportLock
}

// Config contains configuration for one import
type Config struct {
	Workers   int            // Concurrent validators (default: runtime.NumCPU())
	BatchSize int            // Rows per transaction (default: DefaultBatchSize)
	Layout    catalog.Layout // Catalog layout (default: auto-detect)
	Force     bool           // Rewrite rows whose content is unchanged
	Build     annotation.Options
}

// Statistics contains statistics about the import operation
type Statistics struct {
	RunID         string
	Layout        catalog.Layout
	RowsRead      int
	RowsStored    int
	RowsSkipped   int
	RowsInvalid   int
	Duration      time.Duration
	ErrorMessages []string
}

// counters are shared by the batch goroutines
type counters struct {
	stored  atomic.Int32
	skipped atomic.Int32
	invalid atomic.Int32

	mu       sync.Mutex
	messages []string
}

func (c *counters) fail(msg string) {
	c.invalid.Add(1)
	c.mu.Lock()
	if len(c.messages) < maxErrorMessages {
		c.messages = append(c.messages, msg)
	}
	c.mu.Unlock()
}

// New creates a new Importer instance
func New(store storage.Storage, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Importer{storage: store, logger: logger}
}

// Import loads the catalog file at path
func (imp *Importer) Import(ctx context.Context, path string, config *Config) (*Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return imp.ImportReader(ctx, f, path, config)
}

// Running returns the source path of the import in progress, or ""
func (imp *Importer) Running() string {
	return imp.lock.Holder()
}

// ImportReader loads a catalog from r. Rows that fail to parse or validate
// are counted and reported but never abort the import; storage failures do.
func (imp *Importer) ImportReader(ctx context.Context, r io.Reader, sourcePath string, config *Config) (*Statistics, error) {
	if ok, holder := imp.lock.TryAcquire(sourcePath); !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportInProgress, holder)
	}
	defer imp.lock.Release()

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	startTime := time.Now()

	reader, err := catalog.NewReader(r, cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	run := &storage.ImportRun{
		ID:         uuid.New().String(),
		SourcePath: sourcePath,
		Layout:     string(reader.Layout()),
		Status:     storage.RunRunning,
		StartedAt:  startTime,
	}
	if err := imp.storage.CreateImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}

	imp.logger.Info("import started", "run_id", run.ID, "source", sourcePath, "layout", run.Layout)

	stats := &Statistics{RunID: run.ID, Layout: reader.Layout(), ErrorMessages: make([]string, 0)}
	importErr := imp.importRows(ctx, reader, run.ID, &cfg, stats)

	stats.Duration = time.Since(startTime)
	completed := time.Now()
	run.RowsRead = stats.RowsRead
	run.RowsStored = stats.RowsStored
	run.RowsSkipped = stats.RowsSkipped
	run.RowsInvalid = stats.RowsInvalid
	run.CompletedAt = &completed
	run.Duration = stats.Duration
	run.Status = storage.RunCompleted
	if importErr != nil {
		run.Status = storage.RunFailed
	}

	// The import context may already be cancelled; the run row is still closed out
	if err := imp.storage.UpdateImportRun(context.WithoutCancel(ctx), run); err != nil && importErr == nil {
		importErr = fmt.Errorf("failed to update import run: %w", err)
	}

	if importErr != nil {
		imp.logger.Error("import failed", "run_id", run.ID, "error", importErr)
		return stats, importErr
	}

	imp.logger.Info("import completed",
		"run_id", run.ID,
		"read", stats.RowsRead,
		"stored", stats.RowsStored,
		"skipped", stats.RowsSkipped,
		"invalid", stats.RowsInvalid,
		"duration", stats.Duration)
	return stats, nil
}

// importRows commits rows in batches. Batches are validated concurrently but
// committed in file order, so a later row for the same accession always
// overwrites an earlier one.
func (imp *Importer) importRows(ctx context.Context, reader *catalog.Reader, runID string, cfg *Config, stats *Statistics) error {
	semaphore := make(chan struct{}, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	c := &counters{}

	prev := make(chan struct{})
	close(prev)

	batch := make([]*catalog.Row, 0, cfg.BatchSize)
	flush := func() {
		rows := batch
		batch = make([]*catalog.Row, 0, cfg.BatchSize)
		wait, done := prev, make(chan struct{})
		prev = done
		g.Go(func() error {
			defer close(done)
			return imp.importBatch(gctx, rows, runID, cfg, semaphore, wait, c)
		})
	}

	var readErr error
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read catalog: %w", err)
			break
		}
		stats.RowsRead++

		if row.Err != nil {
			c.fail(row.Err.Error())
			continue
		}
		batch = append(batch, row)
		if len(batch) == cfg.BatchSize {
			flush()
		}
	}
	if len(batch) > 0 && readErr == nil {
		flush()
	}

	err := g.Wait()

	stats.RowsStored = int(c.stored.Load())
	stats.RowsSkipped = int(c.skipped.Load())
	stats.RowsInvalid = int(c.invalid.Load())
	stats.ErrorMessages = append(stats.ErrorMessages, c.messages...)

	if err != nil {
		return err
	}
	return readErr
}

// importBatch validates a batch of rows, waits for the previous batch to
// finish, then stores the valid rows within a transaction
func (imp *Importer) importBatch(ctx context.Context, rows []*catalog.Row, runID string, cfg *Config,
	semaphore chan struct{}, wait <-chan struct{}, c *counters) error {

	records := make([]*storage.Record, len(rows))
	for i, row := range rows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		err := validate(row, cfg.Build)
		<-semaphore

		if err != nil {
			c.fail(fmt.Sprintf("line %d: %s: %v", row.Line, row.Raw.ID, err))
			continue
		}
		records[i] = toRecord(row, runID)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wait:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := imp.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range records {
		if rec == nil {
			continue
		}
		store, err := shouldStore(ctx, tx, rec, cfg.Force)
		if err != nil {
			return err
		}
		if !store {
			c.skipped.Add(1)
			continue
		}
		if err := tx.UpsertRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to store %s: %w", rec.Accession, err)
		}
		c.stored.Add(1)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// validate runs the full builder on complete rows. Topology-only rows have
// no annotation lists yet, so only their code is checked.
func validate(row *catalog.Row, opts annotation.Options) error {
	if row.Complete {
		_, err := annotation.Build(row.Raw, opts)
		return err
	}

	if row.Raw.Length <= 0 {
		return fmt.Errorf("length must be positive, got %d", row.Raw.Length)
	}
	outside, inside, err := topology.Decode(row.Raw.TopologyCode, row.Raw.Length)
	if err != nil {
		return err
	}
	if opts.StrictPartition {
		return topology.CheckPartition(outside, inside, row.Raw.Length)
	}
	return nil
}

func toRecord(row *catalog.Row, runID string) *storage.Record {
	source := storage.SourceTopology
	if row.Complete {
		source = storage.SourceDataset
	}
	rec := storage.FromRaw(row.Raw, source, row.Complete)
	rec.OldLength = row.OldLength
	rec.OldTopology = row.OldTopology
	rec.ImportRunID = runID
	return rec
}

// shouldStore reports whether rec differs from what is already stored. A
// topology row never replaces a record already completed from UniProt while
// its length and code are unchanged.
func shouldStore(ctx context.Context, store storage.Storage, rec *storage.Record, force bool) (bool, error) {
	if force {
		return true, nil
	}

	existing, err := store.GetRecord(ctx, rec.Accession)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", rec.Accession, err)
	}

	if existing.ContentHash == rec.ContentHash {
		return false, nil
	}
	if !rec.Complete && existing.Source == storage.SourceUniProt &&
		existing.Length == rec.Length && existing.TopologyCode == rec.TopologyCode {
		return false, nil
	}
	return true, nil
}
