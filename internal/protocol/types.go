// Package protocol defines the data model and state machine for the taming
// pipeline: input configuration, the four-phase output model, persisted runs,
// and the pure intent reducer that is the only way state changes.
package protocol

import "time"

// Mode selects one of the two mutually exclusive generation styles.
type Mode string

const (
	// ModeSilence is the restrained, documentary register ("human silence").
	ModeSilence Mode = "HUMAN_SILENCE"
	// ModeRiot is the expressive, surreal register ("mind riot").
	ModeRiot Mode = "MIND_RIOT"
)

// OutputScale controls how expansive the generated artifacts are.
type OutputScale string

const (
	ScaleStandard OutputScale = "standard"
	ScaleEnhanced OutputScale = "enhanced"
)

// VisualLang selects English-only or bilingual visual prompts.
type VisualLang string

const (
	LangEnglish   VisualLang = "en"
	LangBilingual VisualLang = "zh_en"
)

// InputModel is the user configuration a pipeline run consumes.
type InputModel struct {
	Mode        Mode        `json:"mode"`
	Topic       string      `json:"topic"`
	Intensity   int         `json:"intensity"` // 1..5
	OutputScale OutputScale `json:"outputScale"`
	Constraints []string    `json:"constraints"`
	VisualLang  VisualLang  `json:"visualLang"`
}

// JudgmentContent is the structural judgment produced by the first phase.
// JudgmentLock is the semantic anchor every downstream phase must trace to.
type JudgmentContent struct {
	ObservedClaim        string `json:"observedClaim"`
	OperationalMechanism string `json:"operationalMechanism"`
	FailurePoint         string `json:"failurePoint"`
	JudgmentLock         string `json:"judgmentLock"`
}

// JudgmentOutput holds the working draft and the explicitly confirmed
// judgment. Downstream phases only ever read Confirmed.
type JudgmentOutput struct {
	Draft     *JudgmentContent `json:"draft"`
	Confirmed *JudgmentContent `json:"confirmed"`
}

// CopyOutput is the narrative artifact of the second phase.
type CopyOutput struct {
	NarrativeSpine string   `json:"narrativeSpine"`
	KeyLines       []string `json:"keyLines"`
}

// Scene is one of exactly four ordinal visual-prompt units.
// IDs carry fixed meaning: 1 trace, 2 action, 3 crack, 4 meltdown.
type Scene struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
	Hint   string `json:"hint,omitempty"` // secondary-language annotation
}

// SceneCount is the only legal non-zero scene cardinality.
const SceneCount = 4

// VisualOutput holds the scene sequence, length 0 or exactly SceneCount.
type VisualOutput struct {
	Scenes []Scene `json:"scenes"`
}

// CoachOutput is the retrospective coaching log of the final phase.
type CoachOutput struct {
	DidRight   string `json:"didRight"`
	VisualTips string `json:"visualTips"`
	CopyTips   string `json:"copyTips"`
	Avoided    string `json:"avoided"`
	MusicVibe  string `json:"musicVibe"`
}

// OutputModel bundles all four phase outputs.
type OutputModel struct {
	Judgment JudgmentOutput `json:"judgment"`
	Copy     CopyOutput     `json:"copy"`
	Visual   VisualOutput   `json:"visual"`
	Coach    CoachOutput    `json:"coach"`
}

// Phase names the two validated phases.
type Phase string

const (
	PhaseCopy   Phase = "copy"
	PhaseVisual Phase = "visual"
)

// ValidationFinding is one phase's structural-drift report. A finding with
// zero reasons is never recorded. Blocking findings fail the run; advisory
// findings only warn.
type ValidationFinding struct {
	Phase    Phase    `json:"phase"`
	Reasons  []string `json:"reasons"`
	Blocking bool     `json:"blocking"`
}

// RunStatus is the stored completion flag of a run.
type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// PipelineStatus is the derived outcome of one pipeline invocation.
// WARNING runs are stored as COMPLETED but keep their findings.
type PipelineStatus string

const (
	PipelineCompleted PipelineStatus = "COMPLETED"
	PipelineWarning   PipelineStatus = "WARNING"
	PipelineFailed    PipelineStatus = "FAILED"
)

// Run is one immutable, persisted record of a completed pipeline invocation.
type Run struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Status    RunStatus           `json:"status"`
	Input     InputModel          `json:"input"`
	Output    OutputModel         `json:"output"`
	Findings  []ValidationFinding `json:"findings"`
}

// ValidationStatus is the aggregate status shown for the working state.
type ValidationStatus string

const (
	StatusOK      ValidationStatus = "ok"
	StatusWarning ValidationStatus = "warning"
	StatusFailed  ValidationStatus = "failed"
)

// SchemaVersion tags persisted snapshots. A stored snapshot with any other
// version is discarded in favor of defaults on load.
const SchemaVersion = 1

// State is the sole mutable state of the application. While ViewingRunID is
// non-empty the state is in replay mode: Input/Output mirror the referenced
// run and input-mutating intents are rejected.
type State struct {
	Version      int                 `json:"version"`
	Input        InputModel          `json:"input"`
	Output       OutputModel         `json:"output"`
	Runs         []Run               `json:"runs"`
	Status       ValidationStatus    `json:"status"`
	Findings     []ValidationFinding `json:"findings"`
	ViewingRunID string              `json:"viewingRunId,omitempty"`
}

// InitialState returns the default editable state.
func InitialState() State {
	return State{
		Version: SchemaVersion,
		Input: InputModel{
			Mode:        ModeSilence,
			Intensity:   3,
			OutputScale: ScaleStandard,
			VisualLang:  LangEnglish,
		},
		Status: StatusOK,
	}
}

// Replaying reports whether the state is in read-only replay mode.
func (s State) Replaying() bool {
	return s.ViewingRunID != ""
}

// FindRun returns the stored run with the given id, if any.
func (s State) FindRun(id string) (Run, bool) {
	for _, r := range s.Runs {
		if r.ID == id {
			return r, true
		}
	}
	return Run{}, false
}

// StatusForRun derives the aggregate status a stored run displays as.
func StatusForRun(r Run) ValidationStatus {
	if r.Status == RunFailed {
		return StatusFailed
	}
	if len(r.Findings) > 0 {
		return StatusWarning
	}
	return StatusOK
}

func (c JudgmentContent) clone() *JudgmentContent {
	cc := c
	return &cc
}

func cloneJudgment(j JudgmentOutput) JudgmentOutput {
	out := JudgmentOutput{}
	if j.Draft != nil {
		out.Draft = j.Draft.clone()
	}
	if j.Confirmed != nil {
		out.Confirmed = j.Confirmed.clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneScenes(in []Scene) []Scene {
	if in == nil {
		return nil
	}
	out := make([]Scene, len(in))
	copy(out, in)
	return out
}

// CloneInput returns a deep copy of an InputModel.
func CloneInput(in InputModel) InputModel {
	out := in
	out.Constraints = cloneStrings(in.Constraints)
	return out
}

// CloneOutput returns a deep copy of an OutputModel.
func CloneOutput(o OutputModel) OutputModel {
	out := o
	out.Judgment = cloneJudgment(o.Judgment)
	out.Copy.KeyLines = cloneStrings(o.Copy.KeyLines)
	out.Visual.Scenes = cloneScenes(o.Visual.Scenes)
	return out
}

// CloneFindings returns a deep copy of a findings list.
func CloneFindings(in []ValidationFinding) []ValidationFinding {
	if in == nil {
		return nil
	}
	out := make([]ValidationFinding, len(in))
	for i, f := range in {
		out[i] = f
		out[i].Reasons = cloneStrings(f.Reasons)
	}
	return out
}

// CloneRun returns a deep copy of a run record.
func CloneRun(r Run) Run {
	out := r
	out.Input = CloneInput(r.Input)
	out.Output = CloneOutput(r.Output)
	out.Findings = CloneFindings(r.Findings)
	return out
}
