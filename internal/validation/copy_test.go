package validation

import (
	"strings"
	"testing"

	"taming/internal/protocol"
)

func TestAnchorFragment(t *testing.T) {
	tests := []struct {
		name string
		lock string
		want string
	}{
		{"english label", "Conclusion: Solitude is a dying clarity.", "Solitu"},
		{"chinese label", "结论：独处不是逃避，而是一种濒死的清醒。", "独处不是逃避"},
		{"no label", "独处不是逃避，而是清醒。", "独处不是逃避"},
		{"case insensitive label", "CONCLUSION: loud silence wins.", "loud s"},
		{"shorter than fragment", "结论：短", "短"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnchorFragment(tt.lock); got != tt.want {
				t.Fatalf("AnchorFragment(%q) = %q, want %q", tt.lock, got, tt.want)
			}
		})
	}
}

func TestValidateCopyAnchor(t *testing.T) {
	judgment := protocol.JudgmentContent{JudgmentLock: "结论：独处不是逃避，而是一种濒死的清醒。"}

	anchored := protocol.CopyOutput{NarrativeSpine: "基于锚点：独处不是逃避，这一点在日常中反复出现。"}
	if issues := ValidateCopy(judgment, anchored); len(issues) != 0 {
		t.Fatalf("anchored narrative flagged: %v", issues)
	}

	drifted := protocol.CopyOutput{NarrativeSpine: "一段完全没有引用锚点内容的叙述。"}
	issues := ValidateCopy(judgment, drifted)
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Severity != Blocking {
		t.Fatalf("anchor drift must be blocking, got %q", issues[0].Severity)
	}
}

func TestValidateCopyNamesFirstSlogan(t *testing.T) {
	judgment := protocol.JudgmentContent{JudgmentLock: "结论：独处不是逃避。"}
	copyOut := protocol.CopyOutput{
		NarrativeSpine: "独处不是逃避。但是请 Believe in yourself，期待 Better tomorrow。",
	}

	issues := ValidateCopy(judgment, copyOut)
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 (only the first slogan is reported)", len(issues))
	}
	if !strings.Contains(issues[0].Message, "Believe in yourself") {
		t.Fatalf("issue must name the matched slogan, got %q", issues[0].Message)
	}
	if issues[0].Severity != Blocking {
		t.Fatalf("slogan drift must be blocking, got %q", issues[0].Severity)
	}
}

func TestValidateCopyEmptyInputsNoOp(t *testing.T) {
	if issues := ValidateCopy(protocol.JudgmentContent{}, protocol.CopyOutput{NarrativeSpine: "text"}); issues != nil {
		t.Fatalf("empty lock must be a no-op, got %v", issues)
	}
	if issues := ValidateCopy(protocol.JudgmentContent{JudgmentLock: "结论：x"}, protocol.CopyOutput{}); issues != nil {
		t.Fatalf("empty spine must be a no-op, got %v", issues)
	}
}
