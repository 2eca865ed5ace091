package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuery is returned by SearchRecords for a blank query
	ErrEmptyQuery = errors.New("empty search query")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Record operations

const recordColumns = `
	id, accession, entry_name, description, length, topology_code,
	old_length, old_topology, disulfide_bonds, glycosylation_sites,
	sequon_sites, cysteine_positions, source, complete, content_hash,
	import_run_id, created_at, updated_at`

// upsertRecordWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertRecordWithQuerier(ctx context.Context, q querier, record *Record) error {
	if record.Accession == "" {
		return fmt.Errorf("record accession is required")
	}

	lists, err := encodeLists(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (accession, entry_name, description, length, topology_code,
			old_length, old_topology, disulfide_bonds, glycosylation_sites, sequon_sites,
			cysteine_positions, source, complete, content_hash, import_run_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(accession) DO UPDATE SET
			entry_name = excluded.entry_name,
			description = excluded.description,
			length = excluded.length,
			topology_code = excluded.topology_code,
			old_length = excluded.old_length,
			old_topology = excluded.old_topology,
			disulfide_bonds = excluded.disulfide_bonds,
			glycosylation_sites = excluded.glycosylation_sites,
			sequon_sites = excluded.sequon_sites,
			cysteine_positions = excluded.cysteine_positions,
			source = excluded.source,
			complete = excluded.complete,
			content_hash = excluded.content_hash,
			import_run_id = excluded.import_run_id,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err = q.QueryRowContext(ctx, query,
		record.Accession, record.EntryName, record.Description, record.Length, record.TopologyCode,
		record.OldLength, record.OldTopology, lists[0], lists[1], lists[2], lists[3],
		record.Source, record.Complete, record.ContentHash[:], nullString(record.ImportRunID),
		now, now).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", record.Accession, err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertRecord(ctx context.Context, record *Record) error {
	return s.upsertRecordWithQuerier(ctx, s.querier(), record)
}

// getRecordWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getRecordWithQuerier(ctx context.Context, q querier, accession string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE accession = ?`
	record, err := scanRecord(q.QueryRowContext(ctx, query, accession))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SQLiteStorage) GetRecord(ctx context.Context, accession string) (*Record, error) {
	return s.getRecordWithQuerier(ctx, s.querier(), accession)
}

// getRecordHashWithQuerier reads only the content hash of a record
func (s *SQLiteStorage) getRecordHashWithQuerier(ctx context.Context, q querier, accession string) ([32]byte, error) {
	var hash [32]byte
	var raw []byte
	err := q.QueryRowContext(ctx, "SELECT content_hash FROM records WHERE accession = ?", accession).Scan(&raw)
	if err == sql.ErrNoRows {
		return hash, ErrNotFound
	}
	if err != nil {
		return hash, err
	}
	copy(hash[:], raw)
	return hash, nil
}

func (s *SQLiteStorage) GetRecordHash(ctx context.Context, accession string) ([32]byte, error) {
	return s.getRecordHashWithQuerier(ctx, s.querier(), accession)
}

// deleteRecordWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteRecordWithQuerier(ctx context.Context, q querier, accession string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM records WHERE accession = ?", accession)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteRecord(ctx context.Context, accession string) error {
	return s.deleteRecordWithQuerier(ctx, s.querier(), accession)
}

// listRecordsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listRecordsWithQuerier(ctx context.Context, q querier, offset, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `SELECT ` + recordColumns + ` FROM records ORDER BY accession LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := make([]*Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) ListRecords(ctx context.Context, offset, limit int) ([]*Record, error) {
	return s.listRecordsWithQuerier(ctx, s.querier(), offset, limit)
}

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var record Record
	var entryName, description, oldTopology, importRunID sql.NullString
	var bonds, glyco, sequons, cysteines string
	var hash []byte

	err := row.Scan(
		&record.ID, &record.Accession, &entryName, &description, &record.Length, &record.TopologyCode,
		&record.OldLength, &oldTopology, &bonds, &glyco, &sequons, &cysteines,
		&record.Source, &record.Complete, &hash, &importRunID,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.EntryName = entryName.String
	record.Description = description.String
	record.OldTopology = oldTopology.String
	record.ImportRunID = importRunID.String
	copy(record.ContentHash[:], hash)

	for _, f := range []struct {
		text string
		dst  *[]string
	}{
		{bonds, &record.DisulfideBonds},
		{glyco, &record.GlycosylationSites},
		{sequons, &record.SequonSites},
		{cysteines, &record.CysteinePositions},
	} {
		if err := json.Unmarshal([]byte(f.text), f.dst); err != nil {
			return nil, fmt.Errorf("corrupt list column for %s: %w", record.Accession, err)
		}
	}
	return &record, nil
}

// encodeLists serializes the four annotation lists as JSON arrays
func encodeLists(record *Record) ([4]string, error) {
	var out [4]string
	for i, list := range [][]string{
		record.DisulfideBonds,
		record.GlycosylationSites,
		record.SequonSites,
		record.CysteinePositions,
	} {
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return out, err
		}
		out[i] = string(data)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Import run operations

func (s *SQLiteStorage) createImportRunWithQuerier(ctx context.Context, q querier, run *ImportRun) error {
	if run.ID == "" {
		return fmt.Errorf("import run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = RunRunning
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO import_runs (id, source_path, layout, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.SourcePath, run.Layout, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateImportRun(ctx context.Context, run *ImportRun) error {
	return s.createImportRunWithQuerier(ctx, s.querier(), run)
}

func (s *SQLiteStorage) updateImportRunWithQuerier(ctx context.Context, q querier, run *ImportRun) error {
	result, err := q.ExecContext(ctx, `
		UPDATE import_runs
		SET status = ?, rows_read = ?, rows_stored = ?, rows_skipped = ?, rows_invalid = ?,
		    completed_at = ?, duration_ms = ?
		WHERE id = ?
	`, run.Status, run.RowsRead, run.RowsStored, run.RowsSkipped, run.RowsInvalid,
		run.CompletedAt, run.Duration.Milliseconds(), run.ID)
	if err != nil {
		return fmt.Errorf("failed to update import run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) UpdateImportRun(ctx context.Context, run *ImportRun) error {
	return s.updateImportRunWithQuerier(ctx, s.querier(), run)
}

const importRunColumns = `
	id, source_path, layout, status, rows_read, rows_stored, rows_skipped,
	rows_invalid, started_at, completed_at, duration_ms`

func scanImportRun(row scanner) (*ImportRun, error) {
	var run ImportRun
	var completedAt sql.NullTime
	var durationMs int64
	err := row.Scan(
		&run.ID, &run.SourcePath, &run.Layout, &run.Status, &run.RowsRead, &run.RowsStored,
		&run.RowsSkipped, &run.RowsInvalid, &run.StartedAt, &completedAt, &durationMs,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}

func (s *SQLiteStorage) getImportRunWithQuerier(ctx context.Context, q querier, id string) (*ImportRun, error) {
	run, err := scanImportRun(q.QueryRowContext(ctx, `SELECT `+importRunColumns+` FROM import_runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return run, err
}

func (s *SQLiteStorage) GetImportRun(ctx context.Context, id string) (*ImportRun, error) {
	return s.getImportRunWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) latestImportRunWithQuerier(ctx context.Context, q querier) (*ImportRun, error) {
	run, err := scanImportRun(q.QueryRowContext(ctx,
		`SELECT `+importRunColumns+` FROM import_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return run, err
}

func (s *SQLiteStorage) LatestImportRun(ctx context.Context) (*ImportRun, error) {
	return s.latestImportRunWithQuerier(ctx, s.querier())
}

// Search operations

func (s *SQLiteStorage) SearchRecords(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return searchRecords(ctx, s.querier(), query, limit)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*CatalogStatus, error) {
	status := &CatalogStatus{BuildMode: BuildMode}

	err := q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN complete THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0)
		FROM records
	`, SourceTopology, SourceUniProt).Scan(
		&status.RecordsCount, &status.CompleteCount, &status.TopologyOnlyCount, &status.UniProtCount,
	)
	if err != nil {
		return nil, err
	}

	if err := q.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC, version DESC LIMIT 1",
	).Scan(&status.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	run, err := s.latestImportRunWithQuerier(ctx, q)
	switch {
	case err == nil:
		status.LastImport = run
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	var ftsTable string
	ftsErr := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='records_fts'").Scan(&ftsTable)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexBuilt:      ftsErr == nil,
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations - delegate to storage methods with tx querier

func (t *sqliteTx) UpsertRecord(ctx context.Context, record *Record) error {
	return t.storage.upsertRecordWithQuerier(ctx, t.querier(), record)
}

func (t *sqliteTx) GetRecord(ctx context.Context, accession string) (*Record, error) {
	return t.storage.getRecordWithQuerier(ctx, t.querier(), accession)
}

func (t *sqliteTx) GetRecordHash(ctx context.Context, accession string) ([32]byte, error) {
	return t.storage.getRecordHashWithQuerier(ctx, t.querier(), accession)
}

func (t *sqliteTx) DeleteRecord(ctx context.Context, accession string) error {
	return t.storage.deleteRecordWithQuerier(ctx, t.querier(), accession)
}

func (t *sqliteTx) ListRecords(ctx context.Context, offset, limit int) ([]*Record, error) {
	return t.storage.listRecordsWithQuerier(ctx, t.querier(), offset, limit)
}

func (t *sqliteTx) SearchRecords(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return searchRecords(ctx, t.querier(), query, limit)
}

func (t *sqliteTx) CreateImportRun(ctx context.Context, run *ImportRun) error {
	return t.storage.createImportRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) UpdateImportRun(ctx context.Context, run *ImportRun) error {
	return t.storage.updateImportRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) GetImportRun(ctx context.Context, id string) (*ImportRun, error) {
	return t.storage.getImportRunWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) LatestImportRun(ctx context.Context) (*ImportRun, error) {
	return t.storage.latestImportRunWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
