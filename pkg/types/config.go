package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the optional NCBI API key. With a key NCBI allows 10
	// requests per second instead of 3.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is sent as the email parameter so NCBI can contact the operator.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Tool is sent as the tool parameter (default "pubmed-harvest").
	Tool string `json:"tool" yaml:"tool"`
}

// HarvestConfig holds settings for a batch fetch run.
type HarvestConfig struct {
	// MaxPerTerm is the maximum number of PMIDs requested per term (default 30).
	MaxPerTerm int `json:"max_per_term" yaml:"max_per_term"`

	// RecencyDays limits results to articles published within this many
	// days (default 365). Zero disables the window.
	RecencyDays int `json:"recency_days" yaml:"recency_days"`

	// Pause is the configured wait between consecutive terms (default 3s).
	Pause time.Duration `json:"pause" yaml:"pause"`

	// APIKey is the credential that selects the reduced pause. It is
	// passed in explicitly; the orchestrator never reads the environment.
	APIKey string `json:"-" yaml:"-"`
}

// StoreFormat selects the article store backend.
type StoreFormat string

const (
	StoreCSV    StoreFormat = "csv"
	StoreSQLite StoreFormat = "sqlite"
)

// StoreConfig holds settings for the article store.
type StoreConfig struct {
	// Path is the store file (default "papers.csv").
	Path string `json:"path" yaml:"path"`

	// Format selects the backend: csv or sqlite.
	Format StoreFormat `json:"format" yaml:"format"`
}

// DebugConfig holds settings for the interactive debug surface.
type DebugConfig struct {
	// Addr is the listen address of the debug server (default ":8501").
	Addr string `json:"addr" yaml:"addr"`

	// DefaultTerm is the term the search probe uses when none is given.
	DefaultTerm string `json:"default_term" yaml:"default_term"`

	// DefaultMax is the probe's default result count (default 2).
	DefaultMax int `json:"default_max" yaml:"default_max"`
}

// Config groups all stage configurations.
type Config struct {
	PubMed  PubMedConfig  `json:"pubmed" yaml:"pubmed"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Debug   DebugConfig   `json:"debug" yaml:"debug"`
}
