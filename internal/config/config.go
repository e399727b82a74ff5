package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig `yaml:"server"`
	Store      StoreConfig  `yaml:"store"`
	Dataset    DatasetConfig `yaml:"dataset"`
	Heuristics Heuristics   `yaml:"heuristics"`
	LogLevel   string       `yaml:"log_level"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type DatasetConfig struct {
	Path string `yaml:"path"`
}

// IndicatorWeights are the fixed weights behind the outcome score. They sum
// to 1.0 so the weighted sum scales directly to 0-100.
type IndicatorWeights struct {
	GotAnswer       float64 `yaml:"got_answer"`
	ExpressedThanks float64 `yaml:"expressed_thanks"`
	HadFollowUp     float64 `yaml:"had_follow_up"`
	EndedPositively float64 `yaml:"ended_positively"`
	UserReturned    float64 `yaml:"user_returned"`
}

// FunnelConfig carries the stage-derivation multipliers. These are
// hand-tuned product heuristics, kept overridable rather than hard-coded.
type FunnelConfig struct {
	ShallowCarry  float64 `yaml:"shallow_carry"`
	ModerateCarry float64 `yaml:"moderate_carry"`
	PowerShare    float64 `yaml:"power_share"`
	DropOffWarnPct int    `yaml:"drop_off_warn_pct"`
}

// InsightThresholds are the percentage cut lines of the insight rule table.
type InsightThresholds struct {
	TooShortPct         float64 `yaml:"too_short_pct"`
	TooShortCriticalPct float64 `yaml:"too_short_critical_pct"`
	ShallowPct          float64 `yaml:"shallow_pct"`
	ActiveUserMinPct    float64 `yaml:"active_user_min_pct"`
	AbandonedPct        float64 `yaml:"abandoned_pct"`
	FailedPct           float64 `yaml:"failed_pct"`
}

// Heuristics collects every tunable constant of the evaluation pipeline.
type Heuristics struct {
	Weights IndicatorWeights `yaml:"indicator_weights"`

	// classifier
	MinAnswerChars     int           `yaml:"min_answer_chars"`
	FollowUpMinMessages int          `yaml:"follow_up_min_messages"`
	SessionGap         time.Duration `yaml:"session_gap"`

	// extraction
	MaxTopicExamples int `yaml:"max_topic_examples"`
	ExampleSnippetChars int `yaml:"example_snippet_chars"`

	// aggregation buckets
	ShallowMaxMessages  int `yaml:"shallow_max_messages"`
	ModerateMaxMessages int `yaml:"moderate_max_messages"`
	MinResponseChars    int `yaml:"min_response_chars"`
	MaxResponseChars    int `yaml:"max_response_chars"`

	Insights InsightThresholds `yaml:"insights"`
	Funnel   FunnelConfig      `yaml:"funnel"`

	// evaluation fan-out
	Workers int `yaml:"workers"`
}

// Default returns the config every run starts from. Values mirror the
// shipped product heuristics; config.yaml and env vars layer on top.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080"},
		Store:   StoreConfig{Path: "snapshots.bolt"},
		Dataset: DatasetConfig{Path: "conversations.xlsx"},
		Heuristics: Heuristics{
			Weights: IndicatorWeights{
				GotAnswer:       0.35,
				ExpressedThanks: 0.20,
				HadFollowUp:     0.20,
				EndedPositively: 0.15,
				UserReturned:    0.10,
			},
			MinAnswerChars:      50,
			FollowUpMinMessages: 4,
			SessionGap:          30 * time.Minute,
			MaxTopicExamples:    5,
			ExampleSnippetChars: 80,
			ShallowMaxMessages:  2,
			ModerateMaxMessages: 5,
			MinResponseChars:    50,
			MaxResponseChars:    500,
			Insights: InsightThresholds{
				TooShortPct:         20,
				TooShortCriticalPct: 40,
				ShallowPct:          60,
				ActiveUserMinPct:    5,
				AbandonedPct:        25,
				FailedPct:           15,
			},
			Funnel: FunnelConfig{
				ShallowCarry:   0.3,
				ModerateCarry:  0.4,
				PowerShare:     0.6,
				DropOffWarnPct: 30,
			},
			Workers: 8,
		},
		LogLevel: "info",
	}
}

// Load builds the effective config: defaults, then config.yaml if present,
// then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EVAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Heuristics.Workers = n
		}
	}

	if cfg.Heuristics.Workers < 1 {
		cfg.Heuristics.Workers = 1
	}
	return cfg, nil
}
