package debate

import (
	"regexp"
	"strings"

	"github.com/tradingagents/tradingagents-go/core/parse"
)

// qualityEnvelope is the shape a judge is expected to emit when reporting a
// numeric quality score: {"quality": 8.5, ...}. Extra fields are ignored.
type qualityEnvelope struct {
	Quality float64 `json:"quality"`
}

// qualityPattern is the regex fallback used when the judge's output is not
// valid (or repairable) JSON — LLMs frequently wrap a score in prose like
// "Quality: 8/10" or "quality score = 7".
var qualityPattern = regexp.MustCompile(`(?i)quality[^0-9]{0,10}([0-9]+(?:\.[0-9]+)?)`)

// ExtractQuality pulls a [0, 10] quality score out of a judge's raw text
// output. It first tries parse.ParseStringAs against the {"quality": N}
// envelope (with jsonrepair under the hood for near-miss JSON), then falls
// back to a regex scan. Returns ok=false if no score could be found.
func ExtractQuality(raw string) (score float64, ok bool) {
	if envelope, err := parse.ParseStringAs[qualityEnvelope](raw); err == nil && envelope.Quality != 0 {
		return envelope.Quality, true
	}

	if match := qualityPattern.FindStringSubmatch(raw); match != nil {
		if value, err := parse.ParseStringAs[float64](match[1]); err == nil {
			return value, true
		}
	}

	return 0, false
}

// ContainsConsensusPhrase reports whether raw contains any phrase from
// lexicon, matched case-insensitively. Plain string equality on a single
// hard-coded phrase is brittle against paraphrase; scanning a configurable
// lexicon is the minimum robustness the debate design requires.
func ContainsConsensusPhrase(raw string, lexicon []string) bool {
	lower := strings.ToLower(raw)
	for _, phrase := range lexicon {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
