// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// --- test doubles ---

type fakeInfo struct {
	resp httputil.Response
	err  error
}

func (f fakeInfo) Info(context.Context) (httputil.Response, error) {
	return f.resp, f.err
}

type fakeSource struct {
	ids       []string
	searchErr error
	articles  []types.Article
	fetchErr  error

	gotTerm   string
	gotMax    int
	gotWindow int
}

func (f *fakeSource) Search(_ context.Context, term string, maxResults, recencyDays int) (pubmed.SearchResult, error) {
	f.gotTerm, f.gotMax, f.gotWindow = term, maxResults, recencyDays
	return pubmed.SearchResult{IDs: f.ids}, f.searchErr
}

func (f *fakeSource) FetchDetails(context.Context, []string) ([]types.Article, error) {
	return f.articles, f.fetchErr
}

// --- Connectivity ---

func TestConnectivity(t *testing.T) {
	long := `{"other": "` + strings.Repeat("x", 300) + `"}`
	tests := []struct {
		name        string
		info        fakeInfo
		wantStatus  Status
		wantDetails string
	}{
		{
			name:        "einforesult present",
			info:        fakeInfo{resp: httputil.Response{StatusCode: 200, Body: []byte(`{"header": {"type": "einfo", "version": "0.3"}, "einforesult": {"dblist": ["pubmed"]}}`)}},
			wantStatus:  StatusSuccess,
			wantDetails: "Status code: 200, API version: 0.3",
		},
		{
			name:        "version unknown",
			info:        fakeInfo{resp: httputil.Response{StatusCode: 200, Body: []byte(`{"einforesult": {}}`)}},
			wantStatus:  StatusSuccess,
			wantDetails: "Status code: 200, API version: unknown",
		},
		{
			name:        "unexpected envelope",
			info:        fakeInfo{resp: httputil.Response{StatusCode: 200, Body: []byte(long)}},
			wantStatus:  StatusWarning,
			wantDetails: "Status code: 200, response: " + long[:200] + "...",
		},
		{
			name:        "not json",
			info:        fakeInfo{resp: httputil.Response{StatusCode: 200, Body: []byte("<html>down</html>")}},
			wantStatus:  StatusError,
			wantDetails: "Status code: 200, response: <html>down</html>",
		},
		{
			name:        "http status error",
			info:        fakeInfo{err: &httputil.StatusError{StatusCode: 503, Body: "unavailable"}},
			wantStatus:  StatusError,
			wantDetails: "Status code: 503, response: unavailable",
		},
		{
			name:        "network error",
			info:        fakeInfo{err: errors.New("dial tcp: no route to host")},
			wantStatus:  StatusError,
			wantDetails: "dial tcp: no route to host",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Connectivity(context.Background(), tt.info)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantDetails, got.Details)
			assert.NotEmpty(t, got.Message)
		})
	}
}

// --- Search ---

func TestSearchSuccess(t *testing.T) {
	src := &fakeSource{
		ids:      []string{"1", "2"},
		articles: []types.Article{{PMID: "1", Title: "A"}, {PMID: "2", Title: "B"}},
	}
	got := Search(context.Background(), src, "crossbite", 2)

	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "Fetched 2 articles", got.Message)
	assert.Equal(t, []string{"1", "2"}, got.IDs)
	assert.Len(t, got.Articles, 2)
	assert.Equal(t, "crossbite", src.gotTerm)
	assert.Equal(t, 30, src.gotWindow)
}

func TestSearchDefaultsAndClamp(t *testing.T) {
	tests := []struct {
		term     string
		max      int
		wantTerm string
		wantMax  int
	}{
		{"", 0, DefaultTerm, DefaultMax},
		{"  ", -3, DefaultTerm, DefaultMax},
		{"x", 50, "x", MaxResults},
		{"x", 1, "x", 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%d", tt.term, tt.max), func(t *testing.T) {
			src := &fakeSource{}
			Search(context.Background(), src, tt.term, tt.max)
			assert.Equal(t, tt.wantTerm, src.gotTerm)
			assert.Equal(t, tt.wantMax, src.gotMax)
		})
	}
}

func TestSearchOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		src        *fakeSource
		wantStatus Status
		wantIn     string
	}{
		{"malformed", &fakeSource{searchErr: fmt.Errorf("%w: missing idlist", pubmed.ErrMalformedResponse)}, StatusError, "missing idlist"},
		{"search error", &fakeSource{searchErr: errors.New("timeout")}, StatusError, "timeout"},
		{"no ids", &fakeSource{ids: []string{}}, StatusWarning, `No results for "t"`},
		{"no details", &fakeSource{ids: []string{"7", "8"}}, StatusWarning, "PMID: 7, 8"},
		{"fetch error", &fakeSource{ids: []string{"7"}, fetchErr: errors.New("bad xml")}, StatusError, "bad xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(context.Background(), tt.src, "t", 2)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Contains(t, got.Details, tt.wantIn)
			assert.Empty(t, got.Articles)
		})
	}
}

func TestResultWrite(t *testing.T) {
	r := Result{
		Status:  StatusSuccess,
		Message: "Fetched 1 articles",
		IDs:     []string{"42"},
		Articles: []types.Article{{
			PMID: "42", Title: "Crossbite study", Journal: "Angle Orthod",
			PublicationYear: "2024", URL: "https://pubmed.ncbi.nlm.nih.gov/42/",
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[success] Fetched 1 articles\n"))
	assert.Contains(t, out, "PMIDs: 42")
	assert.Contains(t, out, "1. Crossbite study")
	assert.Contains(t, out, "Angle Orthod (2024)")
}
