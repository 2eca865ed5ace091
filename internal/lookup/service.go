package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/dsbmap/internal/annotation"
	"github.com/dshills/dsbmap/internal/logging"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/internal/uniprot"
	"github.com/dshills/dsbmap/pkg/types"
)

// DefaultCompleteTimeout bounds one UniProt completion, retries included
const DefaultCompleteTimeout = 2 * time.Minute

// ErrRemoteDisabled is the cause of a LookupError for a topology-only
// record when no UniProt fetcher is configured
var ErrRemoteDisabled = errors.New("remote lookup disabled")

// Service resolves accessions to raw records and annotations. Topology-only
// catalog records are completed from UniProt on first access and stored back.
type Service struct {
	store   storage.Storage
	fetcher uniprot.Fetcher
	opts    annotation.Options
	logger  *slog.Logger
	group   singleflight.Group
	timeout time.Duration
}

// Result is an annotation together with the catalog record it was built from
type Result struct {
	Annotation *types.AnnotationRecord
	Record     *storage.Record
}

// NewService creates a lookup service. fetcher may be nil.
func NewService(store storage.Storage, fetcher uniprot.Fetcher, opts annotation.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{store: store, fetcher: fetcher, opts: opts, logger: logger, timeout: DefaultCompleteTimeout}
}

// Get resolves id and builds its annotation
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	rec, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	ann, err := annotation.Build(rec.Raw(), s.opts)
	if err != nil {
		return nil, err
	}
	return &Result{Annotation: ann, Record: rec}, nil
}

// Resolve returns the complete raw record for id. Failures are reported as
// *types.LookupError; errors.Is(err, types.ErrNotFound) holds when neither
// the catalog nor UniProt knows the accession.
func (s *Service) Resolve(ctx context.Context, id string) (*storage.Record, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, &types.LookupError{ID: id, Err: fmt.Errorf("%w: empty accession", types.ErrNotFound)}
	}

	rec, err := s.store.GetRecord(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &types.LookupError{ID: id, Err: fmt.Errorf("%w: not in catalog", types.ErrNotFound)}
	}
	if err != nil {
		return nil, &types.LookupError{ID: id, Err: err}
	}
	if rec.Complete {
		return rec, nil
	}

	// Concurrent requests for the same accession share one fetch. The fetch
	// outlives any single caller; each caller stops waiting on its own ctx.
	ch := s.group.DoChan(id, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.complete(fctx, rec)
	})
	select {
	case <-ctx.Done():
		return nil, &types.LookupError{ID: id, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*storage.Record), nil
	}
}

// complete fetches the UniProt entry for a topology-only record, derives its
// annotation lists and stores the result
func (s *Service) complete(ctx context.Context, rec *storage.Record) (*storage.Record, error) {
	if s.fetcher == nil {
		return nil, &types.LookupError{ID: rec.Accession, Err: ErrRemoteDisabled}
	}

	entry, err := s.fetcher.Fetch(ctx, rec.Accession)
	if errors.Is(err, uniprot.ErrNotFound) {
		return nil, &types.LookupError{ID: rec.Accession, Err: fmt.Errorf("%w: %w", types.ErrNotFound, err)}
	}
	if err != nil {
		return nil, &types.LookupError{ID: rec.Accession, Err: err}
	}

	completed := storage.FromRaw(uniprot.Derive(entry, rec.Raw()), storage.SourceUniProt, true)
	completed.OldLength = rec.OldLength
	completed.OldTopology = rec.OldTopology
	completed.ImportRunID = rec.ImportRunID
	completed.CreatedAt = rec.CreatedAt

	if err := s.store.UpsertRecord(ctx, completed); err != nil {
		return nil, fmt.Errorf("failed to store fetched record %s: %w", rec.Accession, err)
	}

	s.logger.Info("record completed from uniprot",
		"accession", rec.Accession,
		"bonds", len(completed.DisulfideBonds),
		"glycosylation", len(completed.GlycosylationSites))
	return completed, nil
}

// Search runs a full-text search over the catalog
func (s *Service) Search(ctx context.Context, query string, limit int) ([]storage.SearchHit, error) {
	return s.store.SearchRecords(ctx, query, limit)
}
