// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/harvest"
	"github.com/pdiddy/pubmed-harvest/internal/metrics"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch articles for every query term and merge them into the store",
	Long: `Fetch runs each query term in order: it searches PubMed, fetches the
article details, classifies them, and merges them into the store. Terms
are separated by a pause; with an API key the pause drops to a third of
--pause, and never below one second.

A term that fails is logged and skipped. The command exits 0 once every
term has been attempted. Interrupting it keeps every term merged so far.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	terms := harvest.DefaultTerms
	if custom, _ := cmd.Flags().GetString("custom"); custom != "" {
		terms = harvest.ParseTerms(custom)
		if len(terms) == 0 {
			return fmt.Errorf("--custom contains no terms")
		}
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	client := pubmed.NewClient(cfg.PubMed)
	orch := harvest.New(client, st, cfg.Harvest)
	orch.Logger = logger
	orch.Out = os.Stdout

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	if metricsFile != "" {
		orch.Metrics = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("fetching", "store", st.Location(), "terms", len(terms), "api_key", client.HasAPIKey())
	_, runErr := orch.Run(ctx, terms)

	if orch.Metrics != nil {
		if err := orch.Metrics.WriteTextfile(metricsFile); err != nil {
			logger.Error("writing metrics", "err", err)
		}
	}
	return runErr
}

func init() {
	f := fetchCmd.Flags()
	f.Int("max", 30, "maximum results per term")
	f.Int("days", 365, "only fetch articles published within this many days")
	f.Int("pause", 3, "seconds to wait between terms")
	f.String("custom", "", "comma-separated query terms to use instead of the defaults")
	f.String("key", "", "NCBI API key (overrides NCBI_API_KEY)")
	f.String("metrics-file", "", "write Prometheus textfile metrics to this path")

	viper.BindPFlag("harvest.max_per_term", f.Lookup("max"))
	viper.BindPFlag("harvest.recency_days", f.Lookup("days"))

	rootCmd.AddCommand(fetchCmd)
}
