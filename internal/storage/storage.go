package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/dshills/dsbmap/pkg/types"
)

// Storage defines the interface for persisting and querying raw catalog records
type Storage interface {
	// Record operations
	UpsertRecord(ctx context.Context, record *Record) error
	GetRecord(ctx context.Context, accession string) (*Record, error)
	GetRecordHash(ctx context.Context, accession string) ([32]byte, error)
	DeleteRecord(ctx context.Context, accession string) error
	ListRecords(ctx context.Context, offset, limit int) ([]*Record, error)

	// Search operations
	SearchRecords(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Import run operations
	CreateImportRun(ctx context.Context, run *ImportRun) error
	UpdateImportRun(ctx context.Context, run *ImportRun) error
	GetImportRun(ctx context.Context, id string) (*ImportRun, error)
	LatestImportRun(ctx context.Context) (*ImportRun, error)

	// Status operations
	GetStatus(ctx context.Context) (*CatalogStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Record sources
const (
	SourceDataset  = "dataset"  // full annotation row from the dataset CSV
	SourceTopology = "topology" // topology-only row, annotations fetched on demand
	SourceUniProt  = "uniprot"  // topology row completed from UniProt
)

// Record is a raw catalog row. Annotation lists keep their textual form;
// nothing derived from them is ever stored.
type Record struct {
	ID           int64
	Accession    string
	EntryName    string
	Description  string
	Length       int
	TopologyCode string

	// Values the dataset carried before length/topology were revised
	OldLength   int
	OldTopology string

	DisulfideBonds     []string
	GlycosylationSites []string
	SequonSites        []string
	CysteinePositions  []string

	Source      string
	Complete    bool // annotation lists are present
	ContentHash [32]byte
	ImportRunID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FromRaw creates a record from a raw record
func FromRaw(raw types.RawRecord, source string, complete bool) *Record {
	r := &Record{
		Accession:          raw.ID,
		EntryName:          raw.EntryName,
		Description:        raw.Description,
		Length:             raw.Length,
		TopologyCode:       raw.TopologyCode,
		DisulfideBonds:     raw.DisulfideBonds,
		GlycosylationSites: raw.GlycosylationSites,
		SequonSites:        raw.SequonSites,
		CysteinePositions:  raw.CysteinePositions,
		Source:             source,
		Complete:           complete,
	}
	r.ComputeContentHash()
	return r
}

// Raw converts the record back into the input of the annotation builder
func (r *Record) Raw() types.RawRecord {
	return types.RawRecord{
		ID:                 r.Accession,
		EntryName:          r.EntryName,
		Description:        r.Description,
		Length:             r.Length,
		TopologyCode:       r.TopologyCode,
		DisulfideBonds:     r.DisulfideBonds,
		GlycosylationSites: r.GlycosylationSites,
		SequonSites:        r.SequonSites,
		CysteinePositions:  r.CysteinePositions,
	}
}

// ComputeContentHash hashes every field that affects the annotation
func (r *Record) ComputeContentHash() {
	data, _ := json.Marshal(r.Raw())
	r.ContentHash = sha256.Sum256(data)
}

// ImportRun records one catalog import
type ImportRun struct {
	ID          string // UUID
	SourcePath  string
	Layout      string
	Status      string
	RowsRead    int
	RowsStored  int
	RowsSkipped int
	RowsInvalid int
	StartedAt   time.Time
	CompletedAt *time.Time // Nullable
	Duration    time.Duration
}

// Import run states
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// SearchHit is a record matched by full-text search
type SearchHit struct {
	Accession   string
	EntryName   string
	Description string
	Length      int
	Source      string
	Score       float64 // BM25, lower is better
}

// CatalogStatus contains statistics about the catalog
type CatalogStatus struct {
	RecordsCount      int
	CompleteCount     int
	TopologyOnlyCount int
	UniProtCount      int
	DatabaseSizeMB    float64
	SchemaVersion     string
	BuildMode         string
	LastImport        *ImportRun
	Health            HealthStatus
}

// HealthStatus represents the health of the catalog
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexBuilt      bool
}
