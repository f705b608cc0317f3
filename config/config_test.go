package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.SelectedAnalysts) != 4 {
		t.Errorf("SelectedAnalysts = %v, want all four", cfg.SelectedAnalysts)
	}
	if cfg.Debate.MaxResearchRounds != 3 {
		t.Errorf("MaxResearchRounds = %d, want 3", cfg.Debate.MaxResearchRounds)
	}
	if cfg.Debate.MaxRiskRounds != 1 {
		t.Errorf("MaxRiskRounds = %d, want 1", cfg.Debate.MaxRiskRounds)
	}
	if cfg.Runtime.RecursionLimit != 50 {
		t.Errorf("RecursionLimit = %d, want 50", cfg.Runtime.RecursionLimit)
	}
	if cfg.Runtime.WallClockS != 180 {
		t.Errorf("WallClockS = %d, want 180", cfg.Runtime.WallClockS)
	}
	if cfg.Tools.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Tools.MaxRetries)
	}
}

func TestLoadParsesYAMLAndKeepsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
llm:
  provider: anthropic
  quick_model: claude-haiku
  deep_model: claude-opus
selected_analysts: [market, news]
debate:
  max_research_rounds: 5
runtime:
  recursion_limit: 10
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.LLM.Provider)
	}
	if len(cfg.SelectedAnalysts) != 2 {
		t.Errorf("SelectedAnalysts = %v, want 2 entries", cfg.SelectedAnalysts)
	}
	if cfg.Debate.MaxResearchRounds != 5 {
		t.Errorf("MaxResearchRounds = %d, want 5 (explicit value, not default)", cfg.Debate.MaxResearchRounds)
	}
	if cfg.Runtime.RecursionLimit != 10 {
		t.Errorf("RecursionLimit = %d, want 10 (explicit value, not default)", cfg.Runtime.RecursionLimit)
	}
	// Fields left unset in the YAML still get spec defaults.
	if cfg.Debate.MaxRiskRounds != 1 {
		t.Errorf("MaxRiskRounds = %d, want default 1", cfg.Debate.MaxRiskRounds)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.RecursionLimit != 50 {
		t.Errorf("RecursionLimit = %d, want default 50", cfg.Runtime.RecursionLimit)
	}
}

func TestEnvOverridesApplyAfterYAML(t *testing.T) {
	t.Setenv("TRADINGAGENTS_LLM_PROVIDER", "google")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "google" {
		t.Errorf("Provider = %q, want google (from env override)", cfg.LLM.Provider)
	}
}

func TestWallClockBudgetAndNodeTimeoutConversions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WallClockBudget().Seconds() != 180 {
		t.Errorf("WallClockBudget = %v, want 180s", cfg.WallClockBudget())
	}
	if cfg.NodeTimeout().Seconds() != 60 {
		t.Errorf("NodeTimeout = %v, want 60s", cfg.NodeTimeout())
	}
}
