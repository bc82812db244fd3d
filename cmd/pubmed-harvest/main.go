// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-harvest CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/secrets"
	"github.com/pdiddy/pubmed-harvest/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built from --log-level and --log-format before any command runs.
var logger = slog.New(slog.DiscardHandler)

// rootCmd is the base command for the pubmed-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-harvest",
	Short: "Batch-fetch PubMed literature into a deduplicated article store",
	Long: `pubmed-harvest searches PubMed for a list of topical query terms, fetches
article details, classifies each article by study type, evidence level, and
dental issue, and merges the results into a local article store.

The store only grows: articles already stored are kept and duplicates are
dropped by PMID. Use the debug subcommands to check connectivity, run a
one-off search, or inspect what the store holds.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := newLogger(os.Stderr, level, format)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pubmed-harvest.yaml or ~/.config/pubmed-harvest/pubmed-harvest.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("store", "", "article store file (default: "+store.DefaultCSVPath+", or "+store.DefaultSQLitePath+" for sqlite)")
	pf.String("store-format", "", "store backend: csv or sqlite (default: from the file extension)")

	viper.BindPFlag("store.path", pf.Lookup("store"))
	viper.BindPFlag("store.format", pf.Lookup("store-format"))
}

func initConfig() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-harvest"))
		}
	}

	viper.SetEnvPrefix("PUBMED_HARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv(apiKeyEnvKey, "NCBI_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
