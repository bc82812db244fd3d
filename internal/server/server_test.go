// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/internal/metrics"
	"github.com/pdiddy/pubmed-harvest/internal/probe"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// --- test doubles ---

type fakeInfo struct{}

func (fakeInfo) Info(context.Context) (httputil.Response, error) {
	return httputil.Response{StatusCode: 200, Body: []byte(`{"einforesult": {"version": "1.0"}}`)}, nil
}

type fakeSource struct {
	gotTerm string
	gotMax  int
}

func (f *fakeSource) Search(_ context.Context, term string, maxResults, _ int) (pubmed.SearchResult, error) {
	f.gotTerm, f.gotMax = term, maxResults
	return pubmed.SearchResult{IDs: []string{"11"}}, nil
}

func (f *fakeSource) FetchDetails(context.Context, []string) ([]types.Article, error) {
	return []types.Article{{PMID: "11", Title: "Found"}}, nil
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) ([]types.Article, error) {
	return nil, errors.New("locked")
}

func (brokenStore) Summary(context.Context) (store.Summary, error) {
	return store.Summary{}, errors.New("locked")
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "papers.csv")})
	require.NoError(t, err)
	_, err = s.Merge(context.Background(), []types.Article{
		{PMID: "1", Issue: "crowding", EvidenceLevel: "1"},
		{PMID: "2", Issue: "crowding", EvidenceLevel: "2"},
		{PMID: "3", Issue: "open bite", EvidenceLevel: "2"},
	})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// --- handlers ---

func TestHealth(t *testing.T) {
	s := New(types.DebugConfig{}, Deps{})
	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"healthy": true}`, rec.Body.String())
	assert.Equal(t, DefaultAddr, s.Addr())
}

func TestConnect(t *testing.T) {
	m := metrics.New()
	s := New(types.DebugConfig{}, Deps{Info: fakeInfo{}, Metrics: m})

	rec := get(t, s.Handler(), "/api/connect")
	require.Equal(t, http.StatusOK, rec.Code)

	var res probe.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, probe.StatusSuccess, res.Status)
	assert.Contains(t, res.Details, "API version: 1.0")

	metricsRec := get(t, s.Handler(), "/metrics")
	assert.Contains(t, metricsRec.Body.String(), `pubmed_harvest_probes_total{kind="connect",status="success"} 1`)
}

func TestSearch(t *testing.T) {
	t.Run("defaults from config", func(t *testing.T) {
		src := &fakeSource{}
		s := New(types.DebugConfig{DefaultTerm: "crossbite", DefaultMax: 3}, Deps{Source: src})

		rec := get(t, s.Handler(), "/api/search")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "crossbite", src.gotTerm)
		assert.Equal(t, 3, src.gotMax)

		var res probe.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, probe.StatusSuccess, res.Status)
		assert.Equal(t, []string{"11"}, res.IDs)
		require.Len(t, res.Articles, 1)
		assert.Equal(t, "Found", res.Articles[0].Title)
	})

	t.Run("query overrides and clamps", func(t *testing.T) {
		src := &fakeSource{}
		s := New(types.DebugConfig{}, Deps{Source: src})

		rec := get(t, s.Handler(), "/api/search?term=open+bite&max=99")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "open bite", src.gotTerm)
		assert.Equal(t, probe.MaxResults, src.gotMax)
	})

	t.Run("bad max", func(t *testing.T) {
		s := New(types.DebugConfig{}, Deps{Source: &fakeSource{}})
		rec := get(t, s.Handler(), "/api/search?max=lots")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStoreSummary(t *testing.T) {
	s := New(types.DebugConfig{}, Deps{Store: seededStore(t)})

	rec := get(t, s.Handler(), "/api/store")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, []store.Count{{Key: "crowding", Count: 2}, {Key: "open bite", Count: 1}}, sum.ByIssue)
}

func TestStoreArticles(t *testing.T) {
	s := New(types.DebugConfig{}, Deps{Store: seededStore(t)})

	rec := get(t, s.Handler(), "/api/store/articles?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int             `json:"total"`
		Articles []types.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Articles, 2)
	assert.Equal(t, "1", body.Articles[0].PMID)

	assert.Equal(t, http.StatusBadRequest, get(t, s.Handler(), "/api/store/articles?limit=-1").Code)
}

func TestStoreErrors(t *testing.T) {
	s := New(types.DebugConfig{}, Deps{Store: brokenStore{}})

	for _, target := range []string{"/api/store", "/api/store/articles"} {
		rec := get(t, s.Handler(), target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "locked")
	}
}

func TestNoMetricsRouteWithoutRecorder(t *testing.T) {
	s := New(types.DebugConfig{}, Deps{})
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)
}
