// Package lookup resolves accessions to annotation records.
//
// Records imported with full annotation lists are served from the catalog.
// Topology-only records are completed from UniProt the first time they are
// requested, then stored back with source "uniprot" so later lookups stay
// local.
package lookup
