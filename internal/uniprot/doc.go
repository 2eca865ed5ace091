// Package uniprot fetches entries from the UniProtKB REST API and derives
// the raw annotation lists of a catalog record from them.
//
// Only topology-only catalog rows need this: glycosylation sites and
// disulfide bonds come from the entry's features, cysteines and sequons
// from its sequence. Requests are retried with exponential backoff and
// successful entries are kept in an LRU cache.
package uniprot
