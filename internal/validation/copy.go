package validation

import (
	"fmt"
	"regexp"
	"strings"

	"taming/internal/protocol"
)

// conclusionLabel strips a leading "Conclusion:" style label (either
// language, either colon form) off the judgment lock before the anchor
// fragment is taken.
var conclusionLabel = regexp.MustCompile(`(?i)^(conclusion|结论)[:：]\s*`)

// AnchorFragment returns the fragment of the judgment lock the narrative
// must restate verbatim: the first 6 runes of the lock with its label
// stripped.
func AnchorFragment(judgmentLock string) string {
	raw := strings.TrimSpace(conclusionLabel.ReplaceAllString(judgmentLock, ""))
	runes := []rune(raw)
	if len(runes) > anchorFragmentLen {
		runes = runes[:anchorFragmentLen]
	}
	return string(runes)
}

// ValidateCopy checks the narrative against the confirmed judgment.
// An empty spine or empty lock is a no-op, not an error.
func ValidateCopy(judgment protocol.JudgmentContent, copyOut protocol.CopyOutput) []Issue {
	if copyOut.NarrativeSpine == "" || judgment.JudgmentLock == "" {
		return nil
	}

	var issues []Issue

	if !strings.Contains(copyOut.NarrativeSpine, AnchorFragment(judgment.JudgmentLock)) {
		issues = append(issues, Issue{
			Message:  "narrative does not explicitly anchor to the judgment lock",
			Severity: Blocking,
		})
	}

	for _, phrase := range forbiddenSlogans {
		if strings.Contains(copyOut.NarrativeSpine, phrase) {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("style drift: generic slogan %q detected", phrase),
				Severity: Blocking,
			})
			break
		}
	}

	return issues
}
