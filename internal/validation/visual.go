package validation

import (
	"fmt"
	"strings"

	"taming/internal/protocol"
)

// promptBody lowercases the prompt and drops the trailing parameter suffix.
func promptBody(prompt string) string {
	lower := strings.ToLower(prompt)
	body, _, _ := strings.Cut(lower, paramDelimiter)
	return strings.TrimSpace(body)
}

func findTerm(body string, terms []string) (string, bool) {
	for _, term := range terms {
		if strings.Contains(body, term) {
			return term, true
		}
	}
	return "", false
}

// ValidateVisual checks the scene sequence against the mode's rule set.
// An empty sequence is a no-op. copyHasWarning escalates the restrained
// mode's length threshold: once upstream drift is suspected, thin prompts
// are no longer tolerated.
func ValidateVisual(visual protocol.VisualOutput, mode protocol.Mode, lang protocol.VisualLang, copyHasWarning bool) []Issue {
	if len(visual.Scenes) == 0 {
		return nil
	}

	var issues []Issue

	if len(visual.Scenes) != protocol.SceneCount {
		issues = append(issues, Issue{
			Message:  fmt.Sprintf("scene count mismatch: got %d, protocol requires %d", len(visual.Scenes), protocol.SceneCount),
			Severity: Blocking,
		})
	}

	rules := RulesFor(mode)
	minLen := rules.MinPromptLen
	if copyHasWarning && rules.EscalatedMinPromptLen > minLen {
		minLen = rules.EscalatedMinPromptLen
	}

	for _, scene := range visual.Scenes {
		body := promptBody(scene.Prompt)

		if lang == protocol.LangBilingual {
			if len([]rune(strings.TrimSpace(scene.Hint))) < hintMinLen {
				issues = append(issues, Issue{
					Message:  fmt.Sprintf("scene %d missing secondary-language hint in bilingual mode", scene.ID),
					Severity: Blocking,
				})
			}
		}

		if len([]rune(body)) < minLen {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("scene %d prompt too short for %s mode (minimum %d)", scene.ID, mode, minLen),
				Severity: Blocking,
			})
		}

		if term, ok := findTerm(body, rules.ForbiddenTerms); ok {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("scene %d uses forbidden metaphysical term %q", scene.ID, term),
				Severity: Blocking,
			})
		}

		if term, ok := findTerm(body, rules.AnomalyTerms); ok {
			_, safe := findTerm(body, rules.SafeContexts)
			_, danger := findTerm(body, rules.DangerContexts)
			switch {
			case danger:
				issues = append(issues, Issue{
					Message:  fmt.Sprintf("scene %d anomaly %q acts on reality instead of a physical medium", scene.ID, term),
					Severity: Blocking,
				})
			case !safe:
				issues = append(issues, Issue{
					Message:  fmt.Sprintf("scene %d anomaly %q lacks a clear physical medium", scene.ID, term),
					Severity: Advisory,
				})
			}
		}

		if term, ok := findTerm(body, rules.BannedStyleMarkers); ok {
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("scene %d uses banned style marker %q", scene.ID, term),
				Severity: Blocking,
			})
		}
	}

	return issues
}
