package protocol

// Intent is a discrete state transition request. The reducer is total: every
// intent produces a valid next state, and illegal transitions are no-ops.
type Intent interface {
	isIntent()
}

// SetMode switches the generation mode.
type SetMode struct{ Mode Mode }

// SetTopic replaces the free-text topic.
type SetTopic struct{ Topic string }

// SetIntensity sets the 1..5 intensity level.
type SetIntensity struct{ Level int }

// SetOutputScale switches between standard and enhanced output.
type SetOutputScale struct{ Scale OutputScale }

// ToggleConstraint adds the tag if absent, removes it if present.
type ToggleConstraint struct{ Tag string }

// SetVisualLang switches between English-only and bilingual prompts.
type SetVisualLang struct{ Lang VisualLang }

// SetJudgmentDraft installs a freshly generated judgment draft and clears any
// findings from a previous attempt.
type SetJudgmentDraft struct{ Draft JudgmentContent }

// ConfirmJudgment promotes the draft to the confirmed anchor. No-op when no
// draft exists.
type ConfirmJudgment struct{}

// IngestResult replaces the working output with a completed pipeline run and
// prepends the run to history.
type IngestResult struct {
	Run    Run
	Status PipelineStatus
}

// ViewRun enters replay mode on a stored run.
type ViewRun struct{ ID string }

// ExitReplay leaves replay mode and resets the working output.
type ExitReplay struct{}

// ReuseInput leaves replay mode and loads a prior run's input.
type ReuseInput struct{ ID string }

// ReuseJudgment leaves replay mode and loads a prior run's input plus its
// confirmed judgment, clearing everything downstream.
type ReuseJudgment struct{ ID string }

// DeleteRun removes one run from history. The working state is untouched.
type DeleteRun struct{ ID string }

// ResetProtocol restores defaults but keeps history and the selected mode.
type ResetProtocol struct{}

// LoadState replaces the whole state, used when restoring a snapshot.
type LoadState struct{ State State }

func (SetMode) isIntent()          {}
func (SetTopic) isIntent()         {}
func (SetIntensity) isIntent()     {}
func (SetOutputScale) isIntent()   {}
func (ToggleConstraint) isIntent() {}
func (SetVisualLang) isIntent()    {}
func (SetJudgmentDraft) isIntent() {}
func (ConfirmJudgment) isIntent()  {}
func (IngestResult) isIntent()     {}
func (ViewRun) isIntent()          {}
func (ExitReplay) isIntent()       {}
func (ReuseInput) isIntent()       {}
func (ReuseJudgment) isIntent()    {}
func (DeleteRun) isIntent()        {}
func (ResetProtocol) isIntent()    {}
func (LoadState) isIntent()        {}
