// Package config loads dsbmap configuration from YAML with environment
// overrides.
//
// Example file:
//
//	database:
//	  path: ~/.dsbmap/catalog.db
//	log:
//	  level: debug
//	  format: json
//	decoder:
//	  strict_partition: true
//	layout:
//	  width: 1200
//	uniprot:
//	  timeout: 10s
//
// DSBMAP_DB_PATH, DSBMAP_LOG_LEVEL and DSBMAP_UNIPROT_URL override the
// corresponding file values.
package config
