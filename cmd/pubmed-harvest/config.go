package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/harvest"
	"github.com/pdiddy/pubmed-harvest/internal/probe"
	"github.com/pdiddy/pubmed-harvest/internal/secrets"
	"github.com/pdiddy/pubmed-harvest/internal/server"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// apiKeyEnvKey is the viper key bound to NCBI_API_KEY.
const apiKeyEnvKey = "ncbi_api_key"

func init() {
	viper.SetDefault("pubmed.timeout", 30*time.Second)
	viper.SetDefault("pubmed.user_agent", "pubmed-harvest/"+version)
	viper.SetDefault("pubmed.tool", "pubmed-harvest")
	viper.SetDefault("harvest.max_per_term", harvest.DefaultMaxPerTerm)
	viper.SetDefault("harvest.recency_days", harvest.DefaultRecencyDays)
	viper.SetDefault("harvest.pause", harvest.DefaultPause)
	viper.SetDefault("debug.addr", server.DefaultAddr)
	viper.SetDefault("debug.default_term", probe.DefaultTerm)
	viper.SetDefault("debug.default_max", probe.DefaultMax)
}

// loadConfig assembles the configuration from flags, environment, the
// config file, and the secrets directory. The API key is resolved once
// here and passed down explicitly.
func loadConfig(cmd *cobra.Command) types.Config {
	apiKey := resolveAPIKey(cmd)

	cfg := types.Config{
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("pubmed.timeout"),
				UserAgent: viper.GetString("pubmed.user_agent"),
			},
			APIKey: apiKey,
			Email:  secrets.First(viper.GetString("pubmed.email"), loadedSecrets[secrets.NCBIEmail]),
			Tool:   viper.GetString("pubmed.tool"),
		},
		Harvest: types.HarvestConfig{
			MaxPerTerm:  viper.GetInt("harvest.max_per_term"),
			RecencyDays: viper.GetInt("harvest.recency_days"),
			Pause:       viper.GetDuration("harvest.pause"),
			APIKey:      apiKey,
		},
		Store: types.StoreConfig{
			Path:   viper.GetString("store.path"),
			Format: types.StoreFormat(viper.GetString("store.format")),
		},
		Debug: types.DebugConfig{
			Addr:        viper.GetString("debug.addr"),
			DefaultTerm: viper.GetString("debug.default_term"),
			DefaultMax:  viper.GetInt("debug.default_max"),
		},
	}

	// --pause is whole seconds, unlike the duration in the config file.
	if f := cmd.Flags().Lookup("pause"); f != nil && f.Changed {
		secs, _ := cmd.Flags().GetInt("pause")
		cfg.Harvest.Pause = time.Duration(secs) * time.Second
	}
	return cfg
}

// resolveAPIKey picks the NCBI API key: --key, then NCBI_API_KEY, then
// pubmed.api_key from the config file, then .secrets/ncbi-api-key.
func resolveAPIKey(cmd *cobra.Command) string {
	var flagKey string
	if f := cmd.Flags().Lookup("key"); f != nil {
		flagKey = f.Value.String()
	}
	return secrets.First(
		flagKey,
		viper.GetString(apiKeyEnvKey),
		viper.GetString("pubmed.api_key"),
		loadedSecrets[secrets.NCBIAPIKey],
	)
}

// newLogger builds the process logger.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: use text or json", format)
	}
}
