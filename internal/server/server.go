// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the debug probes and the store summary over
// HTTP as JSON. Handlers only read the store.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pubmed-harvest/internal/harvest"
	"github.com/pdiddy/pubmed-harvest/internal/metrics"
	"github.com/pdiddy/pubmed-harvest/internal/probe"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8501"

const (
	defaultArticleLimit = 100
	shutdownTimeout     = 5 * time.Second
)

// StoreReader is the read side of the article store.
type StoreReader interface {
	Load(ctx context.Context) ([]types.Article, error)
	Summary(ctx context.Context) (store.Summary, error)
}

var _ StoreReader = (*store.Store)(nil)

// Deps are the collaborators the handlers call.
type Deps struct {
	Info    probe.Infoer
	Source  harvest.Source
	Store   StoreReader
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Server is the debug HTTP server.
type Server struct {
	cfg    types.DebugConfig
	deps   Deps
	engine *gin.Engine
}

// New builds the router.
func New(cfg types.DebugConfig, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.DefaultTerm == "" {
		cfg.DefaultTerm = probe.DefaultTerm
	}
	if cfg.DefaultMax <= 0 {
		cfg.DefaultMax = probe.DefaultMax
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{cfg: cfg, deps: deps}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
	})
	api := r.Group("/api")
	api.GET("/connect", s.handleConnect)
	api.GET("/search", s.handleSearch)
	api.GET("/store", s.handleStoreSummary)
	api.GET("/store/articles", s.handleStoreArticles)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	s.engine = r
	return s
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("debug server listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleConnect(c *gin.Context) {
	res := probe.Connectivity(c.Request.Context(), s.deps.Info)
	s.deps.Metrics.ObserveProbe("connect", string(res.Status))
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSearch(c *gin.Context) {
	term := c.DefaultQuery("term", s.cfg.DefaultTerm)
	maxResults := s.cfg.DefaultMax
	if v := c.Query("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be an integer"})
			return
		}
		maxResults = n
	}

	res := probe.Search(c.Request.Context(), s.deps.Source, term, maxResults)
	s.deps.Metrics.ObserveProbe("search", string(res.Status))
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStoreSummary(c *gin.Context) {
	sum, err := s.deps.Store.Summary(c.Request.Context())
	if err != nil {
		s.deps.Logger.Error("reading store", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleStoreArticles(c *gin.Context) {
	limit := defaultArticleLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	articles, err := s.deps.Store.Load(c.Request.Context())
	if err != nil {
		s.deps.Logger.Error("reading store", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total := len(articles)
	if limit > 0 && limit < total {
		articles = articles[:limit]
	}
	if articles == nil {
		articles = []types.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "articles": articles})
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.deps.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
