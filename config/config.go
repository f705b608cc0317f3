package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the single explicit parameter run_analysis takes. There is no
// process-wide mutable configuration: every component that needs a tunable
// receives it from this struct, never from a package-level global.
type Config struct {
	LLM              LLMConfig `yaml:"llm"`
	SelectedAnalysts []string  `yaml:"selected_analysts"`
	Debate           Debate    `yaml:"debate"`
	Runtime          Runtime   `yaml:"runtime"`
	Tools            Tools     `yaml:"tools"`
	Data             Data      `yaml:"data"`
}

// LLMConfig selects and tunes the LLM collaborator.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai | anthropic | google | local
	QuickModel string `yaml:"quick_model"`
	DeepModel  string `yaml:"deep_model"`
	BaseURL    string `yaml:"base_url"`
	TimeoutS   int    `yaml:"timeout_s"`
}

// Debate tunes the debate controller's round counts and convergence
// thresholds for both the research (bull/bear) and risk (risky/safe/neutral)
// debates.
type Debate struct {
	MaxResearchRounds      int     `yaml:"max_research_rounds"`
	MaxRiskRounds          int     `yaml:"max_risk_rounds"`
	MinRounds              int     `yaml:"min_rounds"`
	ForceConsensusQuality  float64 `yaml:"force_consensus_quality"`
	CircuitBreakerAttempts int     `yaml:"circuit_breaker_attempts"`
}

// Runtime tunes the graph driver's resource budgets.
type Runtime struct {
	RecursionLimit int `yaml:"recursion_limit"`
	WallClockS     int `yaml:"wall_clock_s"`
	NodeTimeoutS   int `yaml:"node_timeout_s"`
}

// Tools tunes the tool invoker's retry, circuit-breaker, and cache policy.
type Tools struct {
	MaxRetries              int            `yaml:"max_retries"`
	CircuitBreakerThreshold int            `yaml:"circuit_breaker_threshold"`
	CircuitBreakerResetS    int            `yaml:"circuit_breaker_reset_s"`
	CacheTTLS               map[string]int `yaml:"cache_ttl_s"` // per data-kind endpoint, e.g. "ohlcv": 300
}

// Data configures which external providers are tried, in order, per data
// kind, and the authority tier assigned to each news source for downstream
// ranking.
type Data struct {
	Providers      map[string][]string `yaml:"providers"`       // e.g. "ohlcv": [finnhub, yahoo, alphavantage]
	AuthorityTiers map[string]string   `yaml:"authority_tiers"` // source name -> tier, e.g. "reuters": "wire"
}

// Load reads an optional YAML file at path (a zero-value Config if path is
// empty or missing), applies spec defaults for anything left unset, then
// applies environment-variable overrides — read exactly once here, never
// again during the run. godotenv.Load populates the process environment from
// a .env file if one exists; it is not an error for one not to.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config.Load: read %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.SelectedAnalysts) == 0 {
		cfg.SelectedAnalysts = []string{"market", "news", "social", "fundamentals"}
	}
	if cfg.LLM.TimeoutS <= 0 {
		cfg.LLM.TimeoutS = 60
	}
	if cfg.Debate.MaxResearchRounds <= 0 {
		cfg.Debate.MaxResearchRounds = 3
	}
	if cfg.Debate.MaxRiskRounds <= 0 {
		cfg.Debate.MaxRiskRounds = 1
	}
	if cfg.Debate.MinRounds <= 0 {
		cfg.Debate.MinRounds = 1
	}
	if cfg.Debate.ForceConsensusQuality <= 0 {
		cfg.Debate.ForceConsensusQuality = 7
	}
	if cfg.Debate.CircuitBreakerAttempts <= 0 {
		cfg.Debate.CircuitBreakerAttempts = 5
	}
	if cfg.Runtime.RecursionLimit <= 0 {
		cfg.Runtime.RecursionLimit = 50
	}
	if cfg.Runtime.WallClockS <= 0 {
		cfg.Runtime.WallClockS = 180
	}
	if cfg.Runtime.NodeTimeoutS <= 0 {
		cfg.Runtime.NodeTimeoutS = 60
	}
	if cfg.Tools.MaxRetries <= 0 {
		cfg.Tools.MaxRetries = 3
	}
	if cfg.Tools.CircuitBreakerThreshold <= 0 {
		cfg.Tools.CircuitBreakerThreshold = 5
	}
	if cfg.Tools.CircuitBreakerResetS <= 0 {
		cfg.Tools.CircuitBreakerResetS = 60
	}
}

// applyEnvOverrides overrides the handful of options meant to be tuned per
// deployment without editing the YAML file — provider credentials are read
// directly by each providers/ai implementation and are not duplicated here.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADINGAGENTS_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("TRADINGAGENTS_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}

// WallClockBudget returns Runtime.WallClockS as a time.Duration.
func (c Config) WallClockBudget() time.Duration {
	return time.Duration(c.Runtime.WallClockS) * time.Second
}

// NodeTimeout returns Runtime.NodeTimeoutS as a time.Duration.
func (c Config) NodeTimeout() time.Duration {
	return time.Duration(c.Runtime.NodeTimeoutS) * time.Second
}
