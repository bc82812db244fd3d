// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package probe runs the debug checks: a connectivity probe against
// einfo and a one-shot search probe. Probes never read or write the store.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-harvest/internal/harvest"
	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Status is the outcome class of a probe.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Search probe defaults.
const (
	DefaultTerm = "orthodontic AND malocclusion"
	DefaultMax  = 2
	MaxResults  = 10
	windowDays  = 30
)

// snippetLen bounds how much of an unexpected body is echoed back.
const snippetLen = 200

// Result is the outcome of one probe.
type Result struct {
	Status   Status          `json:"status" yaml:"status"`
	Message  string          `json:"message" yaml:"message"`
	Details  string          `json:"details,omitempty" yaml:"details,omitempty"`
	IDs      []string        `json:"pmids,omitempty" yaml:"pmids,omitempty"`
	Articles []types.Article `json:"articles,omitempty" yaml:"articles,omitempty"`
}

// Infoer returns the raw einfo response.
type Infoer interface {
	Info(ctx context.Context) (httputil.Response, error)
}

var _ Infoer = (*pubmed.Client)(nil)

// Connectivity checks that E-utilities answers with an einfo envelope.
func Connectivity(ctx context.Context, c Infoer) Result {
	resp, err := c.Info(ctx)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			return Result{
				Status:  StatusError,
				Message: "PubMed API connection failed",
				Details: fmt.Sprintf("Status code: %d, response: %s", se.StatusCode, se.Body),
			}
		}
		return Result{
			Status:  StatusError,
			Message: "PubMed API connection failed",
			Details: err.Error(),
		}
	}

	var env struct {
		Header *struct {
			Version string `json:"version"`
		} `json:"header"`
		Result *struct {
			Version string `json:"version"`
		} `json:"einforesult"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return Result{
			Status:  StatusError,
			Message: "API response is not valid JSON",
			Details: fmt.Sprintf("Status code: %d, response: %s", resp.StatusCode, httputil.Snippet(resp.Body, snippetLen)),
		}
	}
	if env.Result == nil {
		return Result{
			Status:  StatusWarning,
			Message: "PubMed API responded in an unexpected format",
			Details: fmt.Sprintf("Status code: %d, response: %s", resp.StatusCode, httputil.Snippet(resp.Body, snippetLen)),
		}
	}

	version := env.Result.Version
	if version == "" && env.Header != nil {
		version = env.Header.Version
	}
	if version == "" {
		version = "unknown"
	}
	return Result{
		Status:  StatusSuccess,
		Message: "PubMed API connection succeeded",
		Details: fmt.Sprintf("Status code: %d, API version: %s", resp.StatusCode, version),
	}
}

// ClampMax bounds a requested probe result count to 1..MaxResults. Zero
// or less selects DefaultMax.
func ClampMax(n int) int {
	switch {
	case n <= 0:
		return DefaultMax
	case n > MaxResults:
		return MaxResults
	default:
		return n
	}
}

// Search runs one search and detail fetch over the last 30 days.
func Search(ctx context.Context, src harvest.Source, term string, maxResults int) Result {
	term = strings.TrimSpace(term)
	if term == "" {
		term = DefaultTerm
	}
	maxResults = ClampMax(maxResults)

	sr, err := src.Search(ctx, term, maxResults, windowDays)
	if err != nil {
		if errors.Is(err, pubmed.ErrMalformedResponse) {
			return Result{
				Status:  StatusError,
				Message: "Search result is empty or malformed",
				Details: err.Error(),
			}
		}
		return Result{
			Status:  StatusError,
			Message: "Test search failed",
			Details: err.Error(),
		}
	}
	if len(sr.IDs) == 0 {
		return Result{
			Status:  StatusWarning,
			Message: "Search returned 0 results",
			Details: fmt.Sprintf("No results for %q", term),
		}
	}

	articles, err := src.FetchDetails(ctx, sr.IDs)
	if err != nil {
		return Result{
			Status:  StatusError,
			Message: "Test search failed",
			Details: err.Error(),
			IDs:     sr.IDs,
		}
	}
	if len(articles) == 0 {
		return Result{
			Status:  StatusWarning,
			Message: "Fetching article details failed",
			Details: "PMID: " + strings.Join(sr.IDs, ", "),
			IDs:     sr.IDs,
		}
	}

	return Result{
		Status:   StatusSuccess,
		Message:  fmt.Sprintf("Fetched %d articles", len(articles)),
		IDs:      sr.IDs,
		Articles: articles,
	}
}

// Write renders the result as text: a status line, the details, then one
// block per article.
func (r Result) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "[%s] %s\n", r.Status, r.Message); err != nil {
		return err
	}
	if r.Details != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", r.Details); err != nil {
			return err
		}
	}
	if len(r.IDs) > 0 && len(r.Articles) > 0 {
		if _, err := fmt.Fprintf(w, "  PMIDs: %s\n", strings.Join(r.IDs, ", ")); err != nil {
			return err
		}
	}
	for i, a := range r.Articles {
		if _, err := fmt.Fprintf(w, "\n%d. %s\n   %s (%s)\n   %s\n", i+1, a.Title, a.Journal, a.PublicationYear, a.URL); err != nil {
			return err
		}
	}
	return nil
}
