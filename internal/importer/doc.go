// Package importer loads catalog files into storage.
//
// The pipeline reads rows with package catalog, validates each one and
// upserts it in batched transactions:
//
//	imp := importer.New(store, logger)
//	stats, err := imp.Import(ctx, "catalog.csv", &importer.Config{Workers: 4})
//
// Complete rows are validated by building their annotation; topology-only
// rows by decoding their topology code. Rows that fail either step are
// counted as invalid and listed in Statistics.ErrorMessages without
// aborting the import.
//
// # Incremental Imports
//
// Every stored record carries a SHA-256 hash of its raw content. A row
// whose hash matches the stored one is skipped unless Config.Force is set.
// Topology rows also leave alone records that were completed from UniProt
// as long as length and topology code are unchanged.
//
// Each import is recorded as an import run identified by a UUID. Only one
// import runs at a time per Importer.
package importer
