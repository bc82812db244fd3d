// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest runs the batch fetch: for each query term it searches
// PubMed, fetches article details, classifies them, and merges them into
// the store. Terms run one at a time with a pause between them, and a
// failing term never stops the run.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pubmed-harvest/internal/classify"
	"github.com/pdiddy/pubmed-harvest/internal/metrics"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Default run settings. New applies them to unset fields; a zero
// RecencyDays or Pause is a valid setting and is kept.
const (
	DefaultMaxPerTerm  = 30
	DefaultRecencyDays = 365
	DefaultPause       = 3 * time.Second
)

// Source searches for PMIDs and fetches article details.
type Source interface {
	Search(ctx context.Context, term string, maxResults, recencyDays int) (pubmed.SearchResult, error)
	FetchDetails(ctx context.Context, ids []string) ([]types.Article, error)
}

// Repository holds the accumulated article table.
type Repository interface {
	Load(ctx context.Context) ([]types.Article, error)
	Merge(ctx context.Context, batch []types.Article) (store.Snapshot, error)
}

var (
	_ Source     = (*pubmed.Client)(nil)
	_ Repository = (*store.Store)(nil)
)

// TermStatus is the outcome of one term.
type TermStatus string

const (
	TermMerged    TermStatus = "merged"
	TermEmpty     TermStatus = "empty"
	TermNoDetails TermStatus = "no_details"
	TermMalformed TermStatus = "malformed"
	TermFailed    TermStatus = "failed"
)

// TermResult records what happened to one term.
type TermResult struct {
	Term    string
	Status  TermStatus
	Found   int
	Fetched int
	Added   int
	Err     error
}

// Result holds the outcome of a run.
type Result struct {
	RunID   string
	Terms   []TermResult
	Fetched int
	Added   int
}

// Processed returns the number of terms attempted.
func (r Result) Processed() int {
	return len(r.Terms)
}

// Failed returns the number of terms that ended in an error.
func (r Result) Failed() int {
	n := 0
	for _, t := range r.Terms {
		if t.Status == TermFailed || t.Status == TermMalformed {
			n++
		}
	}
	return n
}

// Orchestrator runs terms against a Source and merges into a Repository.
type Orchestrator struct {
	Source Source
	Repo   Repository
	Config types.HarvestConfig

	// Logger receives structured per-term diagnostics. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// Out receives human-readable progress. Defaults to io.Discard.
	Out io.Writer

	// Sleeper waits between terms. Defaults to ContextSleep.
	Sleeper Sleeper

	// Metrics is optional.
	Metrics *metrics.Recorder
}

// New returns an Orchestrator with cfg's zero fields set to the defaults.
func New(src Source, repo Repository, cfg types.HarvestConfig) *Orchestrator {
	if cfg.MaxPerTerm <= 0 {
		cfg.MaxPerTerm = DefaultMaxPerTerm
	}
	if cfg.RecencyDays < 0 {
		cfg.RecencyDays = DefaultRecencyDays
	}
	if cfg.Pause < 0 {
		cfg.Pause = DefaultPause
	}
	return &Orchestrator{
		Source:  src,
		Repo:    repo,
		Config:  cfg,
		Logger:  slog.New(slog.DiscardHandler),
		Out:     io.Discard,
		Sleeper: SleeperFunc(ContextSleep),
	}
}

// Run processes terms in order. It returns an error only when ctx is
// cancelled; the partial Result is returned with it, and every term merged
// before the cancellation stays persisted.
func (o *Orchestrator) Run(ctx context.Context, terms []string) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	log := o.logger().With("run_id", res.RunID)
	out := o.out()
	pause := EffectivePause(o.Config.Pause, o.Config.APIKey)

	log.Info("fetch run starting",
		"terms", len(terms),
		"max_per_term", o.Config.MaxPerTerm,
		"recency_days", o.Config.RecencyDays,
		"pause", pause,
		"api_key", o.Config.APIKey != "")
	fmt.Fprintf(out, "Fetching %d terms (max %d per term, last %d days, pause %s)\n",
		len(terms), o.Config.MaxPerTerm, o.Config.RecencyDays, pause)

	for i, term := range terms {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(terms), term)
		tr := o.runTerm(ctx, log.With("term", term), term)
		res.Terms = append(res.Terms, tr)
		res.Fetched += tr.Fetched
		res.Added += tr.Added
		o.Metrics.ObserveTerm(string(tr.Status), tr.Fetched, tr.Added)

		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i < len(terms)-1 && pause > 0 {
			if err := o.sleeper().Sleep(ctx, pause); err != nil {
				return res, err
			}
		}
	}

	o.report(ctx, log, res)
	o.Metrics.FinishRun(start)
	return res, nil
}

// runTerm performs one search, detail fetch, and merge. Every failure is
// captured in the returned TermResult.
func (o *Orchestrator) runTerm(ctx context.Context, log *slog.Logger, term string) TermResult {
	out := o.out()
	tr := TermResult{Term: term}

	sr, err := o.Source.Search(ctx, term, o.Config.MaxPerTerm, o.Config.RecencyDays)
	if err != nil {
		tr.Err = err
		if errors.Is(err, pubmed.ErrMalformedResponse) {
			tr.Status = TermMalformed
			log.Warn("search response malformed, skipping term", "err", err)
			fmt.Fprintf(out, "  skipped: malformed search response\n")
			return tr
		}
		tr.Status = TermFailed
		log.Error("search failed", "err", err)
		fmt.Fprintf(out, "  failed: %v\n", err)
		return tr
	}
	tr.Found = len(sr.IDs)
	if tr.Found == 0 {
		tr.Status = TermEmpty
		log.Info("no results")
		fmt.Fprintf(out, "  no results\n")
		return tr
	}

	articles, err := o.Source.FetchDetails(ctx, sr.IDs)
	if err != nil {
		tr.Status = TermFailed
		tr.Err = err
		log.Error("fetching details failed", "ids", len(sr.IDs), "err", err)
		fmt.Fprintf(out, "  failed: %v\n", err)
		return tr
	}
	if len(articles) == 0 {
		tr.Status = TermNoDetails
		log.Warn("no details returned", "ids", len(sr.IDs))
		fmt.Fprintf(out, "  no details for %d ids\n", len(sr.IDs))
		return tr
	}

	for i := range articles {
		classify.Apply(&articles[i], term)
	}

	snap, err := o.Repo.Merge(ctx, articles)
	if err != nil {
		tr.Status = TermFailed
		tr.Err = err
		log.Error("merging into store failed", "err", err)
		fmt.Fprintf(out, "  failed: %v\n", err)
		return tr
	}

	tr.Status = TermMerged
	tr.Fetched = len(articles)
	tr.Added = snap.Added()
	log.Info("term merged",
		"found", tr.Found,
		"fetched", tr.Fetched,
		"added", tr.Added,
		"store_size", len(snap.Articles))
	fmt.Fprintf(out, "  found %d, fetched %d, added %d (store: %d)\n",
		tr.Found, tr.Fetched, tr.Added, len(snap.Articles))
	return tr
}

// report prints the run totals and a summary of the store. A store that
// cannot be read is logged and does not fail the run.
func (o *Orchestrator) report(ctx context.Context, log *slog.Logger, res Result) {
	out := o.out()
	fmt.Fprintf(out, "\nRun summary: %d terms processed, %d failed, %d articles fetched, %d new\n",
		res.Processed(), res.Failed(), res.Fetched, res.Added)
	log.Info("fetch run finished",
		"processed", res.Processed(),
		"failed", res.Failed(),
		"fetched", res.Fetched,
		"added", res.Added)

	articles, err := o.Repo.Load(ctx)
	if err != nil {
		log.Warn("store summary unavailable", "err", err)
		fmt.Fprintf(out, "store summary unavailable: %v\n", err)
		return
	}
	o.Metrics.SetStoreSize(len(articles))
	fmt.Fprintln(out)
	if err := store.Summarize(articles).Write(out); err != nil {
		log.Warn("writing store summary", "err", err)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o *Orchestrator) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return io.Discard
}

func (o *Orchestrator) sleeper() Sleeper {
	if o.Sleeper != nil {
		return o.Sleeper
	}
	return SleeperFunc(ContextSleep)
}
