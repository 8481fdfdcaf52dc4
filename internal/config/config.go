package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "PODCAST_CURATOR_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	apiKeyEnv       = "PODCASTINDEX_API_KEY"
	apiSecretEnv    = "PODCASTINDEX_API_SECRET"
	defaultCacheDir = "cache"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Coverage   CoverageConfig   `yaml:"coverage"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres archive of qualified
// candidates. An empty DSN disables archiving.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DiscoveryConfig wires the PodcastIndex search client.
type DiscoveryConfig struct {
	BaseURL         string   `yaml:"baseUrl"`
	APIKey          string   `yaml:"apiKey"`
	APISecret       string   `yaml:"apiSecret"`
	TargetCount     int      `yaml:"targetCount"`
	SearchTerms     []string `yaml:"searchTerms"`
	MinEpisodeCount int      `yaml:"minEpisodeCount"`
	RequestDelaySec int      `yaml:"requestDelaySeconds"`
}

// RequestDelay is the pause between successive search API calls.
func (d DiscoveryConfig) RequestDelay() time.Duration {
	if d.RequestDelaySec <= 0 {
		return time.Second
	}
	return time.Duration(d.RequestDelaySec) * time.Second
}

// CoverageConfig encodes the dataset collection window and the per-year
// minimums. The year set is policy, not a structural constant.
type CoverageConfig struct {
	TargetYears           []int  `yaml:"targetYears"`
	MinEpisodesPerYear    int    `yaml:"minEpisodesPerYear"`
	MinTranscriptsPerYear int    `yaml:"minTranscriptsPerYear"`
	FetchTimeoutSec       int    `yaml:"fetchTimeoutSeconds"`
	FetchDelaySec         int    `yaml:"fetchDelaySeconds"`
	CachePath             string `yaml:"cachePath"`
}

// FetchTimeout bounds a single feed fetch.
func (c CoverageConfig) FetchTimeout() time.Duration {
	if c.FetchTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// FetchDelay is the pause between successive feed fetches.
func (c CoverageConfig) FetchDelay() time.Duration {
	if c.FetchDelaySec < 0 {
		return 0
	}
	return time.Duration(c.FetchDelaySec) * time.Second
}

// ClassifierConfig selects the scoring policy and optionally overrides
// the built-in indicator lists. Empty lists keep the defaults.
type ClassifierConfig struct {
	Policy                string   `yaml:"policy"`
	CachePath             string   `yaml:"cachePath"`
	OrgIndicators         []string `yaml:"orgIndicators"`
	MultiPersonIndicators []string `yaml:"multiPersonIndicators"`
	SingleHostPositive    []string `yaml:"singleHostPositive"`
	MultiHostNegative     []string `yaml:"multiHostNegative"`
	AmbiguousTerms        []string `yaml:"ambiguousTerms"`
	ScriptedIndicators    []string `yaml:"scriptedIndicators"`
	HonorificTitles       []string `yaml:"honorificTitles"`
	NonPersonalTerms      []string `yaml:"nonPersonalTerms"`
}

// PipelineConfig controls batching and stage output locations.
type PipelineConfig struct {
	BatchSize  int    `yaml:"batchSize"`
	FlushEvery int    `yaml:"flushEvery"`
	OutputDir  string `yaml:"outputDir"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Discovery.APIKey = v
	}
	if v := os.Getenv(apiSecretEnv); v != "" {
		c.Discovery.APISecret = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Discovery.BaseURL != "" {
		base.Discovery.BaseURL = override.Discovery.BaseURL
	}
	if override.Discovery.APIKey != "" {
		base.Discovery.APIKey = override.Discovery.APIKey
	}
	if override.Discovery.APISecret != "" {
		base.Discovery.APISecret = override.Discovery.APISecret
	}
	if override.Discovery.TargetCount > 0 {
		base.Discovery.TargetCount = override.Discovery.TargetCount
	}
	if len(override.Discovery.SearchTerms) > 0 {
		base.Discovery.SearchTerms = override.Discovery.SearchTerms
	}
	if override.Discovery.MinEpisodeCount > 0 {
		base.Discovery.MinEpisodeCount = override.Discovery.MinEpisodeCount
	}
	if override.Discovery.RequestDelaySec > 0 {
		base.Discovery.RequestDelaySec = override.Discovery.RequestDelaySec
	}

	if len(override.Coverage.TargetYears) > 0 {
		base.Coverage.TargetYears = override.Coverage.TargetYears
	}
	if override.Coverage.MinEpisodesPerYear > 0 {
		base.Coverage.MinEpisodesPerYear = override.Coverage.MinEpisodesPerYear
	}
	if override.Coverage.MinTranscriptsPerYear > 0 {
		base.Coverage.MinTranscriptsPerYear = override.Coverage.MinTranscriptsPerYear
	}
	if override.Coverage.FetchTimeoutSec > 0 {
		base.Coverage.FetchTimeoutSec = override.Coverage.FetchTimeoutSec
	}
	if override.Coverage.FetchDelaySec > 0 {
		base.Coverage.FetchDelaySec = override.Coverage.FetchDelaySec
	}
	if override.Coverage.CachePath != "" {
		base.Coverage.CachePath = override.Coverage.CachePath
	}

	if override.Classifier.Policy != "" {
		base.Classifier.Policy = override.Classifier.Policy
	}
	if override.Classifier.CachePath != "" {
		base.Classifier.CachePath = override.Classifier.CachePath
	}
	if len(override.Classifier.OrgIndicators) > 0 {
		base.Classifier.OrgIndicators = override.Classifier.OrgIndicators
	}
	if len(override.Classifier.MultiPersonIndicators) > 0 {
		base.Classifier.MultiPersonIndicators = override.Classifier.MultiPersonIndicators
	}
	if len(override.Classifier.SingleHostPositive) > 0 {
		base.Classifier.SingleHostPositive = override.Classifier.SingleHostPositive
	}
	if len(override.Classifier.MultiHostNegative) > 0 {
		base.Classifier.MultiHostNegative = override.Classifier.MultiHostNegative
	}
	if len(override.Classifier.AmbiguousTerms) > 0 {
		base.Classifier.AmbiguousTerms = override.Classifier.AmbiguousTerms
	}
	if len(override.Classifier.ScriptedIndicators) > 0 {
		base.Classifier.ScriptedIndicators = override.Classifier.ScriptedIndicators
	}
	if len(override.Classifier.HonorificTitles) > 0 {
		base.Classifier.HonorificTitles = override.Classifier.HonorificTitles
	}
	if len(override.Classifier.NonPersonalTerms) > 0 {
		base.Classifier.NonPersonalTerms = override.Classifier.NonPersonalTerms
	}

	if override.Pipeline.BatchSize > 0 {
		base.Pipeline.BatchSize = override.Pipeline.BatchSize
	}
	if override.Pipeline.FlushEvery > 0 {
		base.Pipeline.FlushEvery = override.Pipeline.FlushEvery
	}
	if override.Pipeline.OutputDir != "" {
		base.Pipeline.OutputDir = override.Pipeline.OutputDir
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Discovery: DiscoveryConfig{
			BaseURL:     "https://api.podcastindex.org/api/1.0",
			TargetCount: 5000,
			SearchTerms: []string{
				"lecture podcast", "academic podcast", "monologue podcast",
				"reflection podcast", "analysis podcast", "philosophy lecture",
				"history lecture", "science lecture", "research podcast",
				"scripted podcast", "written podcast", "transcript podcast",
			},
			MinEpisodeCount: 20,
			RequestDelaySec: 1,
		},
		Coverage: CoverageConfig{
			TargetYears:           []int{2020, 2021, 2022, 2023, 2024},
			MinEpisodesPerYear:    2,
			MinTranscriptsPerYear: 2,
			FetchTimeoutSec:       10,
			FetchDelaySec:         1,
			CachePath:             defaultCacheDir + "/coverage_cache.json",
		},
		Classifier: ClassifierConfig{
			Policy:    "full",
			CachePath: defaultCacheDir + "/verification_cache.json",
		},
		Pipeline: PipelineConfig{
			BatchSize:  50,
			FlushEvery: 10,
			OutputDir:  "output",
		},
	}
}
