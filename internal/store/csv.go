// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// CSVBackend keeps the table in a CSV file with a header row. Every save
// rewrites the file through a temporary file and rename.
type CSVBackend struct {
	path string
}

var _ Backend = (*CSVBackend)(nil)

// NewCSVBackend returns a backend for the file at path. The file is
// created on first save.
func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{path: path}
}

func (b *CSVBackend) Location() string { return b.path }

func (b *CSVBackend) Close() error { return nil }

// Load reads the table. Columns are matched by header name, so files
// written with a different column order still load.
func (b *CSVBackend) Load(ctx context.Context) ([]types.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", b.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var articles []types.Article
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		articles = append(articles, types.ArticleFromRow(header, row))
	}
	return articles, nil
}

// Save writes articles as the complete table.
func (b *CSVBackend) Save(ctx context.Context, articles []types.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(types.ArticleColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range articles {
		if err := w.Write(a.Row()); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row %s: %w", a.PMID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}
