// Package storage provides SQLite-based persistence for the raw record
// catalog.
//
// Only raw records are stored: topology codes, lengths and the textual
// annotation lists exactly as the dataset or UniProt delivered them. Decoded
// segments, free sites and bond classes are rebuilt on every lookup and are
// never written to the database.
//
// # Database Schema
//
// Tables:
//   - records: one row per accession, annotation lists as JSON arrays
//   - records_fts: FTS5 index over accession, entry name and description
//   - import_runs: one row per catalog import
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.dsbmap/catalog.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := storage.FromRaw(raw, storage.SourceDataset, true)
//	if err := store.UpsertRecord(ctx, rec); err != nil {
//	    return err
//	}
//
//	hits, err := store.SearchRecords(ctx, "insulin recep", 10)
//
// # Transactions
//
// Use transactions for atomic batches:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for _, rec := range batch {
//	    if err := tx.UpsertRecord(ctx, rec); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// # Change Detection
//
// Every record carries a SHA-256 of its annotation-relevant fields. The
// importer compares it with GetRecordHash and skips rows that did not change.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite. Building with the sqlite_cgo
// tag switches to github.com/mattn/go-sqlite3.
package storage
