// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/metrics"
	"github.com/pdiddy/pubmed-harvest/internal/probe"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/server"
	"github.com/pdiddy/pubmed-harvest/internal/store"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Check PubMed connectivity, run a test search, or inspect the store",
	Long: `Debug groups the diagnostic checks. Probes talk to PubMed but never
touch the store; the store check only reads it.`,
}

// --- connect subcommand ---

var debugConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Check that the E-utilities API answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		res := probe.Connectivity(context.Background(), pubmed.NewClient(cfg.PubMed))
		return writeProbe(cmd, res)
	},
}

// --- search subcommand ---

var debugSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Run one search and detail fetch over the last 30 days",
	Long: `Search runs a single search and detail fetch and prints what came back.
The term defaults to "orthodontic AND malocclusion"; --max is capped at 10.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		term := cfg.Debug.DefaultTerm
		if len(args) > 0 {
			term = strings.Join(args, " ")
		}
		res := probe.Search(context.Background(), pubmed.NewClient(cfg.PubMed), term, cfg.Debug.DefaultMax)
		return writeProbe(cmd, res)
	},
}

// --- store subcommand ---

var debugStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Summarize the article store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		sum, err := st.Summary(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		fmt.Printf("Store: %s\n", st.Location())
		return sum.Write(os.Stdout)
	},
}

// --- serve subcommand ---

var debugServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the probes and store summary as JSON over HTTP",
	Long: `Serve starts an HTTP server with these endpoints:

  GET /health               liveness
  GET /api/connect          connectivity probe
  GET /api/search?term=&max= search probe
  GET /api/store            store summary
  GET /api/store/articles   stored articles (?limit=N, default 100)
  GET /metrics              probe counters in Prometheus format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		client := pubmed.NewClient(cfg.PubMed)
		srv := server.New(cfg.Debug, server.Deps{
			Info:    client,
			Source:  client,
			Store:   st,
			Metrics: metrics.New(),
			Logger:  logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

// writeProbe prints res and turns an error status into a non-zero exit.
func writeProbe(cmd *cobra.Command, res probe.Result) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if err := res.Write(os.Stdout); err != nil {
		return err
	}
	if res.Status == probe.StatusError {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}

func init() {
	debugCmd.PersistentFlags().Bool("json", false, "output as JSON")

	debugSearchCmd.Flags().Int("max", probe.DefaultMax, "maximum results (1-10)")
	viper.BindPFlag("debug.default_max", debugSearchCmd.Flags().Lookup("max"))

	debugServeCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	viper.BindPFlag("debug.addr", debugServeCmd.Flags().Lookup("addr"))

	debugCmd.AddCommand(debugConnectCmd)
	debugCmd.AddCommand(debugSearchCmd)
	debugCmd.AddCommand(debugStoreCmd)
	debugCmd.AddCommand(debugServeCmd)

	rootCmd.AddCommand(debugCmd)
}
