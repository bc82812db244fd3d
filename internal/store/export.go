// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes the whole table to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	articles, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if articles == nil {
		articles = []types.Article{}
	}

	var data []byte
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		data, err = yaml.Marshal(articles)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(articles, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}

	_, err = w.Write(data)
	return err
}
