package debate

// DefaultLexicon is the set of phrases scanned for in a judge's output to
// detect consensus. Plain equality against a single hard-coded phrase is
// the brittleness this lexicon exists to avoid.
var DefaultLexicon = []string{
	"consensus reached",
	"agreement found",
	"both perspectives align",
	"converged on",
	"unanimous",
	"agreed",
}

// Config tunes one debate instance's termination behavior.
type Config struct {
	// MaxRounds caps round_count; at this round the controller forces
	// consensus regardless of the judge's output.
	MaxRounds int

	// MinRounds is the minimum number of rounds before a quality-score-only
	// consensus (no lexicon hit) is accepted.
	MinRounds int

	// ForceConsensusQuality is the quality threshold (on a 0-10 scale) at or
	// above which consensus is declared even without a lexicon hit.
	ForceConsensusQuality float64

	// CircuitBreakerAttempts bounds the total number of loop entries; beyond
	// it the controller forces consensus unconditionally. This guarantees
	// termination independent of any model's behavior.
	CircuitBreakerAttempts int

	// Lexicon is the set of consensus-indicating phrases. Defaults to
	// DefaultLexicon when nil.
	Lexicon []string
}

// applyDefaults fills zero-valued fields with the spec's documented defaults.
func (c Config) applyDefaults() Config {
	if c.MaxRounds == 0 {
		c.MaxRounds = 3
	}
	if c.MinRounds == 0 {
		c.MinRounds = 1
	}
	if c.ForceConsensusQuality == 0 {
		c.ForceConsensusQuality = 7
	}
	if c.CircuitBreakerAttempts == 0 {
		c.CircuitBreakerAttempts = 5
	}
	if c.Lexicon == nil {
		c.Lexicon = DefaultLexicon
	}
	return c
}

// ResearchDefaults returns the Config defaults for the bull/bear research
// debate: up to 3 rounds.
func ResearchDefaults() Config {
	return Config{MaxRounds: 3}.applyDefaults()
}

// RiskDefaults returns the Config defaults for the risky/safe/neutral risk
// debate: a single round by default.
func RiskDefaults() Config {
	return Config{MaxRounds: 1}.applyDefaults()
}
