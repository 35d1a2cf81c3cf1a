package validation

import (
	"time"

	"github.com/google/uuid"

	"taming/internal/protocol"
)

// Bundle validates all phase outputs, derives the overall pipeline status and
// assembles the immutable run record.
//
// Status derivation: any blocking visual issue fails the run; any other issue
// (copy, or advisory-only visual) downgrades it to a warning; otherwise the
// run completed clean. Warning runs are stored as COMPLETED but keep their
// findings for display.
func Bundle(
	input protocol.InputModel,
	judgment protocol.JudgmentContent,
	copyOut protocol.CopyOutput,
	visual protocol.VisualOutput,
	coach protocol.CoachOutput,
) (protocol.Run, protocol.PipelineStatus) {
	copyIssues := ValidateCopy(judgment, copyOut)
	copyHasWarning := len(copyIssues) > 0

	visualIssues := ValidateVisual(visual, input.Mode, input.VisualLang, copyHasWarning)

	var findings []protocol.ValidationFinding
	status := protocol.PipelineCompleted

	if len(copyIssues) > 0 {
		findings = append(findings, protocol.ValidationFinding{
			Phase:    protocol.PhaseCopy,
			Reasons:  messages(copyIssues),
			Blocking: anyBlocking(copyIssues),
		})
		status = protocol.PipelineWarning
	}

	if len(visualIssues) > 0 {
		blocking := anyBlocking(visualIssues)
		findings = append(findings, protocol.ValidationFinding{
			Phase:    protocol.PhaseVisual,
			Reasons:  messages(visualIssues),
			Blocking: blocking,
		})
		if blocking {
			status = protocol.PipelineFailed
		} else if status != protocol.PipelineFailed {
			status = protocol.PipelineWarning
		}
	}

	runStatus := protocol.RunCompleted
	if status == protocol.PipelineFailed {
		runStatus = protocol.RunFailed
	}

	run := protocol.Run{
		ID:        newRunID(),
		CreatedAt: time.Now().UTC(),
		Status:    runStatus,
		Input:     protocol.CloneInput(input),
		Output: protocol.OutputModel{
			Judgment: protocol.JudgmentOutput{Draft: &judgment, Confirmed: &judgment},
			Copy:     copyOut,
			Visual:   visual,
			Coach:    coach,
		},
		Findings: findings,
	}

	return run, status
}

// newRunID returns a unique, creation-time-ordered identifier. UUIDv7 embeds
// a millisecond timestamp, so lexical order follows creation order.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
