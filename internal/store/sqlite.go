// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// SQLiteBackend keeps the table in a SQLite database. The seq column
// preserves insertion order.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend opens or creates the database at path and ensures the
// articles table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) createSchema() error {
	_, err := b.db.Exec(`CREATE TABLE IF NOT EXISTS articles (
		pmid TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		title TEXT,
		authors TEXT,
		journal TEXT,
		publication_year TEXT,
		doi TEXT,
		study_type TEXT,
		evidence_level TEXT,
		issue TEXT,
		abstract TEXT,
		url TEXT
	)`)
	return err
}

func (b *SQLiteBackend) Location() string { return b.path }

// Close releases the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Load returns all rows ordered by seq.
func (b *SQLiteBackend) Load(ctx context.Context) ([]types.Article, error) {
	query := `SELECT ` + strings.Join(types.ArticleColumns, ", ") + ` FROM articles ORDER BY seq`
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		var a types.Article
		if err := rows.Scan(
			&a.PMID, &a.Title, &a.Authors, &a.Journal, &a.PublicationYear,
			&a.DOI, &a.StudyType, &a.EvidenceLevel, &a.Issue, &a.Abstract, &a.URL,
		); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Save inserts the rows of articles that are not stored yet, in one
// transaction. Stored rows are never updated.
func (b *SQLiteBackend) Save(ctx context.Context, articles []types.Article) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var base int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM articles`).Scan(&base); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO articles
		(pmid, seq, title, authors, journal, publication_year, doi, study_type, evidence_level, issue, abstract, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range articles {
		if _, err := stmt.ExecContext(ctx,
			a.PMID, base+i, a.Title, a.Authors, a.Journal, a.PublicationYear,
			a.DOI, a.StudyType, a.EvidenceLevel, a.Issue, a.Abstract, a.URL,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", a.PMID, err)
		}
	}

	return tx.Commit()
}
