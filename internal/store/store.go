// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the article table and merges fetched batches
// into it. The table only grows: rows are never deleted, and no two rows
// share a PMID.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Default store files per backend.
const (
	DefaultCSVPath    = "papers.csv"
	DefaultSQLitePath = "papers.db"
)

// Backend loads and saves the full ordered article table.
type Backend interface {
	// Load returns every stored article in table order. A store that
	// does not exist yet is empty, not an error.
	Load(ctx context.Context) ([]types.Article, error)

	// Save persists articles as the complete table. Callers only ever
	// pass the previous table extended with new rows.
	Save(ctx context.Context, articles []types.Article) error

	// Location describes where the table lives, for log lines.
	Location() string

	Close() error
}

// Snapshot is the table after a merge.
type Snapshot struct {
	// Articles is the full ordered table.
	Articles []types.Article

	// Before is the number of rows the table held before the merge.
	Before int
}

// Added returns the number of rows the merge appended.
func (s Snapshot) Added() int {
	return len(s.Articles) - s.Before
}

// Store merges batches into a Backend.
type Store struct {
	backend Backend
}

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open returns a Store for cfg. An empty format is inferred from the path
// extension (.db, .sqlite, .sqlite3 select sqlite) and defaults to csv.
func Open(cfg types.StoreConfig) (*Store, error) {
	format := cfg.Format
	if format == "" {
		format = inferFormat(cfg.Path)
	}

	switch format {
	case types.StoreCSV:
		path := cfg.Path
		if path == "" {
			path = DefaultCSVPath
		}
		return New(NewCSVBackend(path)), nil
	case types.StoreSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		b, err := NewSQLiteBackend(path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	default:
		return nil, fmt.Errorf("unknown store format %q (want csv or sqlite)", format)
	}
}

func inferFormat(path string) types.StoreFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return types.StoreSQLite
	default:
		return types.StoreCSV
	}
}

// Location reports where the table lives.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load returns the current table.
func (s *Store) Load(ctx context.Context) ([]types.Article, error) {
	articles, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading store %s: %w", s.backend.Location(), err)
	}
	return articles, nil
}

// Merge appends the records of batch whose PMIDs are not yet stored and
// persists the result. Existing rows win over incoming duplicates, and
// records without a PMID are dropped. An empty batch leaves the store
// untouched.
func (s *Store) Merge(ctx context.Context, batch []types.Article) (Snapshot, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	existing = Dedup(existing)
	before := len(existing)

	if len(batch) == 0 {
		return Snapshot{Articles: existing, Before: before}, nil
	}

	combined := make([]types.Article, 0, before+len(batch))
	combined = append(combined, existing...)
	combined = append(combined, batch...)
	merged := Dedup(combined)

	if len(merged) == before {
		return Snapshot{Articles: merged, Before: before}, nil
	}
	if err := s.backend.Save(ctx, merged); err != nil {
		return Snapshot{}, fmt.Errorf("saving store %s: %w", s.backend.Location(), err)
	}
	return Snapshot{Articles: merged, Before: before}, nil
}

// Summary loads the table and summarizes it.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	articles, err := s.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(articles), nil
}

// Dedup returns records with later duplicates of a PMID removed, keeping
// the first occurrence and the original order. Records with an empty PMID
// are dropped.
func Dedup(records []types.Article) []types.Article {
	seen := make(map[string]bool, len(records))
	out := make([]types.Article, 0, len(records))
	for _, r := range records {
		id := strings.TrimSpace(r.PMID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}
