package config

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"influencerroi/internal/analytics"
	"influencerroi/internal/dataset"
)

// Config holds the core runtime configuration for the dashboard.
// Values are sourced from APP_* environment variables (a .env file is
// loaded by main before Load runs), with defaults matching the original
// CSV export names.
type Config struct {
	Environment string
	ListenAddr  string

	// DataSource selects the loader: "csv" reads the four files from
	// DataDir, "postgres" reads the four tables from DatabaseURL.
	DataSource  string
	DataDir     string
	DatabaseURL string

	InfluencersFile string
	PostsFile       string
	TrackingFile    string
	PayoutsFile     string

	// RequiredDatasets lists datasets whose absence is fatal. Anything not
	// listed may be missing; the views that depend on it degrade instead.
	RequiredDatasets []string

	// Defaults applied when a request does not set them explicitly.
	ROIThreshold    float64
	LeaderboardSize int
	ContentLimit    int
}

// Load reads configuration from the environment and applies defaults.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("data_source", "csv")
	v.SetDefault("data_dir", ".")
	v.SetDefault("database_url", "")
	v.SetDefault("influencers_file", "influencers.csv")
	v.SetDefault("posts_file", "posts.csv")
	v.SetDefault("tracking_file", "tracking_data.csv")
	v.SetDefault("payouts_file", "payouts.csv")
	v.SetDefault("required_datasets", strings.Join(AllDatasets(), ","))
	v.SetDefault("roi_threshold", 0.0)
	v.SetDefault("leaderboard_size", 5)
	v.SetDefault("content_limit", 5)

	cfg := &Config{
		Environment:      v.GetString("environment"),
		ListenAddr:       v.GetString("listen_addr"),
		DataSource:       strings.ToLower(strings.TrimSpace(v.GetString("data_source"))),
		DataDir:          v.GetString("data_dir"),
		DatabaseURL:      strings.TrimSpace(v.GetString("database_url")),
		InfluencersFile:  v.GetString("influencers_file"),
		PostsFile:        v.GetString("posts_file"),
		TrackingFile:     v.GetString("tracking_file"),
		PayoutsFile:      v.GetString("payouts_file"),
		RequiredDatasets: splitList(v.GetString("required_datasets")),
		ROIThreshold:     v.GetFloat64("roi_threshold"),
		LeaderboardSize:  v.GetInt("leaderboard_size"),
		ContentLimit:     v.GetInt("content_limit"),
	}

	if math.IsNaN(cfg.ROIThreshold) || math.IsInf(cfg.ROIThreshold, 0) {
		cfg.ROIThreshold = 0
	}
	cfg.LeaderboardSize = listSize(cfg.LeaderboardSize)
	cfg.ContentLimit = listSize(cfg.ContentLimit)

	return cfg
}

// listSize keeps a configured list size inside the range a filter accepts.
// Non-positive values fall back to the default of 5.
func listSize(n int) int {
	switch {
	case n <= 0:
		return 5
	case n > analytics.MaxListSize:
		return analytics.MaxListSize
	}
	return n
}

// AllDatasets returns the four dataset names in pipeline order.
func AllDatasets() []string {
	return []string{dataset.Influencers, dataset.Posts, dataset.Tracking, dataset.Payouts}
}

// Path joins DataDir with a dataset file name unless the name is already absolute.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Paths resolves the four dataset files.
func (c *Config) Paths() dataset.Paths {
	return dataset.Paths{
		Influencers: c.Path(c.InfluencersFile),
		Posts:       c.Path(c.PostsFile),
		Tracking:    c.Path(c.TrackingFile),
		Payouts:     c.Path(c.PayoutsFile),
	}
}

// LoadOptions returns the loader options for the configured required set.
func (c *Config) LoadOptions() dataset.Options {
	return dataset.Options{Required: append([]string{}, c.RequiredDatasets...)}
}

// DefaultFilter is the filter a request starts from before its own query.
func (c *Config) DefaultFilter() analytics.Filter {
	f := analytics.DefaultFilter()
	f.Threshold = c.ROIThreshold
	f.LeaderboardSize = c.LeaderboardSize
	f.ContentLimit = c.ContentLimit
	return f
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
