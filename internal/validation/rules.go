// Package validation checks phase outputs against mode-specific structural
// rules. Validators are pure: they return severity-tagged issues as data and
// never fail. The thresholds and term lists here are tuned values; treat them
// as frozen constants, not something to re-derive.
package validation

import "taming/internal/protocol"

// Severity splits findings into run-failing and merely suspicious.
type Severity string

const (
	Blocking Severity = "blocking"
	Advisory Severity = "advisory"
)

// Issue is a single human-readable finding with its severity.
type Issue struct {
	Message  string
	Severity Severity
}

// anchorFragmentLen is how many runes of the judgment lock the narrative
// spine must restate verbatim.
const anchorFragmentLen = 6

// hintMinLen is the minimum rune length of a scene's secondary-language hint
// in bilingual mode.
const hintMinLen = 5

// forbiddenSlogans is the anti-cliché denylist for narrative copy. Matches
// are exact substrings, case-sensitive.
var forbiddenSlogans = []string{
	"相信自己", "明天会更好", "Just do it", "拥抱未来", "初心", "正能量",
	"Believe in yourself", "Better tomorrow",
}

// ModeRules is the per-mode visual rule set. The restrained mode carries the
// full term machinery; the expressive mode only enforces an absolute minimum
// length and ignores everything else by design.
type ModeRules struct {
	// MinPromptLen is the minimum rune length of the prompt body (the part
	// before the parameter suffix delimiter).
	MinPromptLen int
	// EscalatedMinPromptLen replaces MinPromptLen when the upstream copy
	// phase already drifted. Zero disables escalation.
	EscalatedMinPromptLen int
	// ForbiddenTerms are hard-banned anywhere in the prompt body.
	ForbiddenTerms []string
	// AnomalyTerms trigger the contextual medium check.
	AnomalyTerms []string
	// SafeContexts ground an anomaly in a physical medium.
	SafeContexts []string
	// DangerContexts mean the anomaly attacks reality itself.
	DangerContexts []string
	// BannedStyleMarkers are blocking regardless of context.
	BannedStyleMarkers []string
}

// paramDelimiter separates the prompt body from trailing generator
// parameters ("--v 6.0 --stylize ..." suffixes).
const paramDelimiter = "--"

var modeRules = map[protocol.Mode]ModeRules{
	protocol.ModeSilence: {
		MinPromptLen:          30,
		EscalatedMinPromptLen: 50,
		ForbiddenTerms: []string{
			"surreal", "psychedelic", "dreamscape", "hallucination",
			"impossible geometry", "floating object", "levitation",
			"melting skin", "melting reality", "reality collapse",
			"monster", "creature", "conscious entity",
		},
		AnomalyTerms: []string{
			"glitch", "distortion", "artifact", "noise", "flicker",
			"interference", "static",
		},
		SafeContexts: []string{
			"screen", "monitor", "tv", "signal", "broadcast", "camera",
			"lens", "film", "vhs", "infrastructure", "machine", "lamp",
		},
		DangerContexts: []string{
			"reality", "mind", "memory", "world", "universe", "soul",
			"consciousness", "perception", "sky", "nature",
		},
		BannedStyleMarkers: []string{"cyberpunk"},
	},
	protocol.ModeRiot: {
		MinPromptLen: 10,
	},
}

// RulesFor returns the visual rule set for a mode.
func RulesFor(mode protocol.Mode) ModeRules {
	return modeRules[mode]
}

func anyBlocking(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == Blocking {
			return true
		}
	}
	return false
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}
