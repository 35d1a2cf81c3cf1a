package protocol

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleJudgment() JudgmentContent {
	return JudgmentContent{
		ObservedClaim:        "claim",
		OperationalMechanism: "mechanism",
		FailurePoint:         "failure",
		JudgmentLock:         "结论：独处不是逃避，而是一种濒死的清醒。",
	}
}

func sampleRun(id string) Run {
	j := sampleJudgment()
	return Run{
		ID:        id,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Status:    RunCompleted,
		Input: InputModel{
			Mode:        ModeRiot,
			Topic:       "solitude",
			Intensity:   4,
			OutputScale: ScaleStandard,
			VisualLang:  LangBilingual,
			Constraints: []string{"no-people"},
		},
		Output: OutputModel{
			Judgment: JudgmentOutput{Draft: &j, Confirmed: &j},
			Copy:     CopyOutput{NarrativeSpine: "spine", KeyLines: []string{"line"}},
			Visual: VisualOutput{Scenes: []Scene{
				{ID: 1, Prompt: "p1"}, {ID: 2, Prompt: "p2"},
				{ID: 3, Prompt: "p3"}, {ID: 4, Prompt: "p4"},
			}},
			Coach: CoachOutput{DidRight: "dr"},
		},
	}
}

func TestApplyInputIntents(t *testing.T) {
	s := InitialState()

	s = Apply(s, SetMode{Mode: ModeRiot})
	if s.Input.Mode != ModeRiot {
		t.Fatalf("mode = %q, want %q", s.Input.Mode, ModeRiot)
	}

	s = Apply(s, SetTopic{Topic: "procrastination"})
	if s.Input.Topic != "procrastination" {
		t.Fatalf("topic = %q", s.Input.Topic)
	}

	s = Apply(s, SetIntensity{Level: 5})
	if s.Input.Intensity != 5 {
		t.Fatalf("intensity = %d, want 5", s.Input.Intensity)
	}
	// Out-of-range levels are ignored.
	s = Apply(s, SetIntensity{Level: 0})
	if s.Input.Intensity != 5 {
		t.Fatalf("intensity after invalid set = %d, want 5", s.Input.Intensity)
	}
	s = Apply(s, SetIntensity{Level: 6})
	if s.Input.Intensity != 5 {
		t.Fatalf("intensity after invalid set = %d, want 5", s.Input.Intensity)
	}

	s = Apply(s, SetOutputScale{Scale: ScaleEnhanced})
	if s.Input.OutputScale != ScaleEnhanced {
		t.Fatalf("scale = %q", s.Input.OutputScale)
	}

	s = Apply(s, SetVisualLang{Lang: LangBilingual})
	if s.Input.VisualLang != LangBilingual {
		t.Fatalf("lang = %q", s.Input.VisualLang)
	}
}

func TestApplyToggleConstraint(t *testing.T) {
	s := InitialState()

	s = Apply(s, ToggleConstraint{Tag: "no-people"})
	s = Apply(s, ToggleConstraint{Tag: "night"})
	if diff := cmp.Diff([]string{"no-people", "night"}, s.Input.Constraints); diff != "" {
		t.Fatalf("constraints mismatch (-want +got):\n%s", diff)
	}

	s = Apply(s, ToggleConstraint{Tag: "no-people"})
	if diff := cmp.Diff([]string{"night"}, s.Input.Constraints); diff != "" {
		t.Fatalf("constraints after toggle off (-want +got):\n%s", diff)
	}
}

func TestApplyJudgmentDraftAndConfirm(t *testing.T) {
	s := InitialState()

	// Confirm without a draft is a no-op.
	s2 := Apply(s, ConfirmJudgment{})
	if s2.Output.Judgment.Confirmed != nil {
		t.Fatal("confirm without draft should not set Confirmed")
	}

	s.Status = StatusWarning
	s.Findings = []ValidationFinding{{Phase: PhaseCopy, Reasons: []string{"old"}}}
	s = Apply(s, SetJudgmentDraft{Draft: sampleJudgment()})
	if s.Output.Judgment.Draft == nil {
		t.Fatal("draft not installed")
	}
	if s.Status != StatusOK || s.Findings != nil {
		t.Fatalf("draft must clear previous findings, got status %q findings %v", s.Status, s.Findings)
	}

	s = Apply(s, ConfirmJudgment{})
	if s.Output.Judgment.Confirmed == nil {
		t.Fatal("confirmed not set")
	}
	if diff := cmp.Diff(s.Output.Judgment.Draft, s.Output.Judgment.Confirmed); diff != "" {
		t.Fatalf("confirmed differs from draft (-draft +confirmed):\n%s", diff)
	}
}

func TestApplyIngestResultPrependsHistory(t *testing.T) {
	s := InitialState()
	s = Apply(s, IngestResult{Run: sampleRun("run-1"), Status: PipelineCompleted})
	s = Apply(s, IngestResult{Run: sampleRun("run-2"), Status: PipelineWarning})

	if len(s.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(s.Runs))
	}
	if s.Runs[0].ID != "run-2" || s.Runs[1].ID != "run-1" {
		t.Fatalf("history order wrong: %s, %s", s.Runs[0].ID, s.Runs[1].ID)
	}
	if s.Status != StatusWarning {
		t.Fatalf("status = %q, want %q", s.Status, StatusWarning)
	}
	if s.Output.Copy.NarrativeSpine != "spine" {
		t.Fatal("working output not replaced by run output")
	}
}

func TestApplyIngestResultDoesNotAliasRun(t *testing.T) {
	run := sampleRun("run-1")
	s := Apply(InitialState(), IngestResult{Run: run, Status: PipelineCompleted})

	run.Output.Visual.Scenes[0].Prompt = "mutated"
	run.Input.Constraints[0] = "mutated"

	if s.Runs[0].Output.Visual.Scenes[0].Prompt == "mutated" {
		t.Fatal("stored run shares scene backing array with caller")
	}
	if s.Runs[0].Input.Constraints[0] == "mutated" {
		t.Fatal("stored run shares constraints backing array with caller")
	}
}

func TestReplayGatesInputIntents(t *testing.T) {
	s := Apply(InitialState(), IngestResult{Run: sampleRun("run-1"), Status: PipelineCompleted})
	s = Apply(s, ViewRun{ID: "run-1"})

	if !s.Replaying() {
		t.Fatal("expected replay mode")
	}
	if s.Input.Topic != "solitude" {
		t.Fatalf("replay input not mirrored, topic = %q", s.Input.Topic)
	}

	// All mutating intents are frozen during replay.
	frozen := []Intent{
		SetTopic{Topic: "other"},
		SetMode{Mode: ModeSilence},
		SetIntensity{Level: 1},
		SetJudgmentDraft{Draft: sampleJudgment()},
		ConfirmJudgment{},
		IngestResult{Run: sampleRun("run-x"), Status: PipelineCompleted},
		ViewRun{ID: "run-1"},
		ResetProtocol{},
	}
	for _, intent := range frozen {
		next := Apply(s, intent)
		if diff := cmp.Diff(s, next); diff != "" {
			t.Fatalf("intent %T must be a no-op during replay (-before +after):\n%s", intent, diff)
		}
	}
}

func TestExitReplayClearsWorkingOutput(t *testing.T) {
	s := Apply(InitialState(), IngestResult{Run: sampleRun("run-1"), Status: PipelineCompleted})
	s = Apply(s, ViewRun{ID: "run-1"})
	s = Apply(s, ExitReplay{})

	if s.Replaying() {
		t.Fatal("still replaying")
	}
	if diff := cmp.Diff(OutputModel{}, s.Output); diff != "" {
		t.Fatalf("output not cleared (-want +got):\n%s", diff)
	}
	if s.Status != StatusOK || s.Findings != nil {
		t.Fatalf("status/findings not reset: %q %v", s.Status, s.Findings)
	}
	if len(s.Runs) != 1 {
		t.Fatal("history must survive replay exit")
	}
}

func TestReuseInputAndJudgment(t *testing.T) {
	s := Apply(InitialState(), IngestResult{Run: sampleRun("run-1"), Status: PipelineCompleted})
	s = Apply(s, ViewRun{ID: "run-1"})

	reused := Apply(s, ReuseInput{ID: "run-1"})
	if reused.Replaying() {
		t.Fatal("reuse must leave replay mode")
	}
	if reused.Input.Topic != "solitude" {
		t.Fatalf("input not loaded, topic = %q", reused.Input.Topic)
	}
	if reused.Output.Judgment.Confirmed != nil {
		t.Fatal("reuse-input must clear the judgment")
	}

	reused = Apply(s, ReuseJudgment{ID: "run-1"})
	if reused.Replaying() {
		t.Fatal("reuse-judgment must leave replay mode")
	}
	if reused.Output.Judgment.Confirmed == nil {
		t.Fatal("reuse-judgment must keep the confirmed judgment")
	}
	if reused.Output.Copy.NarrativeSpine != "" || len(reused.Output.Visual.Scenes) != 0 {
		t.Fatal("reuse-judgment must clear downstream phases")
	}
}

func TestDeleteRun(t *testing.T) {
	s := Apply(InitialState(), IngestResult{Run: sampleRun("run-1"), Status: PipelineCompleted})
	s = Apply(s, IngestResult{Run: sampleRun("run-2"), Status: PipelineCompleted})

	s = Apply(s, DeleteRun{ID: "run-1"})
	if len(s.Runs) != 1 || s.Runs[0].ID != "run-2" {
		t.Fatalf("delete failed, runs = %v", s.Runs)
	}

	// Deleting the run under replay exits replay too.
	s = Apply(s, ViewRun{ID: "run-2"})
	s = Apply(s, DeleteRun{ID: "run-2"})
	if s.Replaying() {
		t.Fatal("deleting the viewed run must exit replay")
	}
	if len(s.Runs) != 0 {
		t.Fatalf("runs = %d, want 0", len(s.Runs))
	}
}

func TestResetProtocolKeepsHistoryAndMode(t *testing.T) {
	s := Apply(InitialState(), SetMode{Mode: ModeRiot})
	s = Apply(s, SetTopic{Topic: "solitude"})
	s = Apply(s, IngestResult{Run: sampleRun("run-1"), Status: PipelineWarning})

	s = Apply(s, ResetProtocol{})
	if s.Input.Mode != ModeRiot {
		t.Fatalf("mode = %q, want %q", s.Input.Mode, ModeRiot)
	}
	if s.Input.Topic != "" {
		t.Fatalf("topic survived reset: %q", s.Input.Topic)
	}
	if len(s.Runs) != 1 {
		t.Fatal("history must survive reset")
	}
	if s.Status != StatusOK {
		t.Fatalf("status = %q", s.Status)
	}
}

func TestStatusForRun(t *testing.T) {
	run := sampleRun("run-1")
	if got := StatusForRun(run); got != StatusOK {
		t.Fatalf("clean run status = %q", got)
	}
	run.Findings = []ValidationFinding{{Phase: PhaseCopy, Reasons: []string{"drift"}}}
	if got := StatusForRun(run); got != StatusWarning {
		t.Fatalf("warned run status = %q", got)
	}
	run.Status = RunFailed
	if got := StatusForRun(run); got != StatusFailed {
		t.Fatalf("failed run status = %q", got)
	}
}
