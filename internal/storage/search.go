package storage

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// DefaultSearchLimit applies when SearchRecords is called with limit <= 0
const DefaultSearchLimit = 20

// searchRecords runs a BM25 ranked FTS5 query over accession, entry name and
// protein description
func searchRecords(ctx context.Context, q querier, query string, limit int) ([]SearchHit, error) {
	match := buildMatchExpr(query)
	if match == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := q.QueryContext(ctx, `
		SELECT r.accession, r.entry_name, r.description, r.length, r.source,
		       bm25(records_fts) AS score
		FROM records_fts
		INNER JOIN records r ON records_fts.rowid = r.id
		WHERE records_fts MATCH ?
		ORDER BY score, r.accession
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]SearchHit, 0)
	for rows.Next() {
		var hit SearchHit
		var entryName, description *string
		if err := rows.Scan(&hit.Accession, &entryName, &description, &hit.Length, &hit.Source, &hit.Score); err != nil {
			return nil, err
		}
		if entryName != nil {
			hit.EntryName = *entryName
		}
		if description != nil {
			hit.Description = *description
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// buildMatchExpr turns free text into an FTS5 expression. Every term is
// quoted, which neutralizes FTS5 operators and syntax, and gets a prefix
// star so that partial accessions and names match as the user types.
func buildMatchExpr(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, "")
		if strings.IndexFunc(term, isWordRune) < 0 {
			continue
		}
		quoted = append(quoted, `"`+term+`"*`)
	}
	return strings.Join(quoted, " ")
}

// Relevance converts a BM25 score (negative, lower is better) into (0, 1]
func Relevance(bm25 float64) float64 {
	return 1.0 / (1.0 + math.Abs(bm25)/50.0)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
