// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities API: esearch for PMID lists,
// efetch for article details, and einfo for connectivity checks.
package pubmed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// eutilsBase is the E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// articleURLBase prefixes a PMID to form the article's PubMed page.
const articleURLBase = "https://pubmed.ncbi.nlm.nih.gov/"

const (
	defaultTool      = "pubmed-harvest"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "pubmed-harvest/0.1"
)

// ErrMalformedResponse reports an esearch envelope without the
// esearchresult.idlist field.
var ErrMalformedResponse = errors.New("malformed esearch response")

// SearchResult holds the PMIDs returned for one term.
type SearchResult struct {
	// IDs lists PMIDs in relevance order.
	IDs []string
	// Count is the total number of matches PubMed reports, which may
	// exceed len(IDs).
	Count int
}

// Client talks to E-utilities. The zero HTTP field uses a client with the
// configured timeout.
type Client struct {
	HTTP   *http.Client
	Config types.PubMedConfig
}

// NewClient returns a Client for cfg, filling defaults for timeout,
// user agent, and tool name.
func NewClient(cfg types.PubMedConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

// HasAPIKey reports whether requests carry an NCBI API key.
func (c *Client) HasAPIKey() bool {
	return c.Config.APIKey != ""
}

// Search runs esearch for term, returning at most maxResults PMIDs of
// articles published within the last recencyDays days. A non-positive
// recencyDays searches all dates.
func (c *Client) Search(ctx context.Context, term string, maxResults, recencyDays int) (SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return SearchResult{}, fmt.Errorf("empty search term")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	params := c.params(url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(maxResults)},
		"sort":    {"relevance"},
	})
	if recencyDays > 0 {
		params.Set("datetype", "pdat")
		params.Set("reldate", strconv.Itoa(recencyDays))
	}

	resp, err := httputil.Get(ctx, c.httpClient(), eutilsBase+"/esearch.fcgi?"+params.Encode(), c.Config.UserAgent)
	if err != nil {
		return SearchResult{}, fmt.Errorf("esearch request: %w", err)
	}

	var env esearchEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return SearchResult{}, fmt.Errorf("parsing esearch response: %w", err)
	}
	if env.Result == nil {
		return SearchResult{}, fmt.Errorf("%w: missing esearchresult: %s", ErrMalformedResponse, httputil.Snippet(resp.Body, 200))
	}
	if env.Result.IDList == nil {
		if env.Result.Error != "" {
			return SearchResult{}, fmt.Errorf("%w: %s", ErrMalformedResponse, env.Result.Error)
		}
		return SearchResult{}, fmt.Errorf("%w: missing idlist", ErrMalformedResponse)
	}

	count, _ := strconv.Atoi(env.Result.Count)
	return SearchResult{IDs: *env.Result.IDList, Count: count}, nil
}

// FetchDetails runs efetch for ids and returns one Article per
// PubmedArticle in the response. Study type and evidence level are
// filled from the publication types; the issue is left to the caller,
// which knows the search term.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]types.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := c.params(url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	})

	resp, err := httputil.Get(ctx, c.httpClient(), eutilsBase+"/efetch.fcgi?"+params.Encode(), c.Config.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("efetch request: %w", err)
	}

	articles, err := parseArticleSet(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}
	return articles, nil
}

// Info calls einfo and returns the raw response. A non-2xx status is
// reported as an *httputil.StatusError alongside the response.
func (c *Client) Info(ctx context.Context) (httputil.Response, error) {
	params := c.params(url.Values{"retmode": {"json"}})
	return httputil.Get(ctx, c.httpClient(), eutilsBase+"/einfo.fcgi?"+params.Encode(), c.Config.UserAgent)
}

// params adds the identification parameters NCBI asks clients to send.
func (c *Client) params(v url.Values) url.Values {
	if c.Config.Tool != "" {
		v.Set("tool", c.Config.Tool)
	}
	if c.Config.Email != "" {
		v.Set("email", c.Config.Email)
	}
	if c.Config.APIKey != "" {
		v.Set("api_key", c.Config.APIKey)
	}
	return v
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: defaultTimeout}
}

// ArticleURL returns the PubMed page for pmid.
func ArticleURL(pmid string) string {
	return articleURLBase + pmid + "/"
}

// esearch JSON structures. Pointers distinguish absent fields from
// empty ones: "idlist": [] is a valid empty result, a missing idlist is not.
type esearchEnvelope struct {
	Result *esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string    `json:"count"`
	IDList *[]string `json:"idlist"`
	Error  string    `json:"ERROR"`
}
