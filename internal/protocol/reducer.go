package protocol

// Apply is the protocol state machine: a pure, total transition function.
// It never mutates its arguments; illegal intents return the state unchanged.
//
// While the state is replaying a stored run, only ExitReplay, ReuseInput,
// ReuseJudgment, DeleteRun and LoadState are honored. Everything that could
// mutate the working input or advance a phase is frozen.
func Apply(s State, intent Intent) State {
	if s.Replaying() {
		switch intent.(type) {
		case ExitReplay, ReuseInput, ReuseJudgment, DeleteRun, LoadState:
		default:
			return s
		}
	}

	switch it := intent.(type) {
	case SetMode:
		s.Input.Mode = it.Mode
		return s

	case SetTopic:
		s.Input.Topic = it.Topic
		return s

	case SetIntensity:
		if it.Level < 1 || it.Level > 5 {
			return s
		}
		s.Input.Intensity = it.Level
		return s

	case SetOutputScale:
		s.Input.OutputScale = it.Scale
		return s

	case ToggleConstraint:
		constraints := make([]string, 0, len(s.Input.Constraints)+1)
		found := false
		for _, tag := range s.Input.Constraints {
			if tag == it.Tag {
				found = true
				continue
			}
			constraints = append(constraints, tag)
		}
		if !found {
			constraints = append(constraints, it.Tag)
		}
		s.Input.Constraints = constraints
		return s

	case SetVisualLang:
		s.Input.VisualLang = it.Lang
		return s

	case SetJudgmentDraft:
		s.Output = CloneOutput(s.Output)
		s.Output.Judgment.Draft = it.Draft.clone()
		s.Status = StatusOK
		s.Findings = nil
		return s

	case ConfirmJudgment:
		if s.Output.Judgment.Draft == nil {
			return s
		}
		s.Output = CloneOutput(s.Output)
		s.Output.Judgment.Confirmed = s.Output.Judgment.Draft.clone()
		return s

	case IngestResult:
		run := CloneRun(it.Run)
		s.Output = CloneOutput(run.Output)
		s.Findings = CloneFindings(run.Findings)
		s.Status = statusFromPipeline(it.Status)
		s.Runs = prependRun(s.Runs, run)
		return s

	case ViewRun:
		run, ok := s.FindRun(it.ID)
		if !ok {
			return s
		}
		s.ViewingRunID = run.ID
		s.Input = CloneInput(run.Input)
		s.Output = CloneOutput(run.Output)
		s.Findings = CloneFindings(run.Findings)
		s.Status = StatusForRun(run)
		return s

	case ExitReplay:
		s.ViewingRunID = ""
		s.Output = OutputModel{}
		s.Status = StatusOK
		s.Findings = nil
		return s

	case ReuseInput:
		run, ok := s.FindRun(it.ID)
		if !ok {
			return s
		}
		s.ViewingRunID = ""
		s.Input = CloneInput(run.Input)
		s.Output = OutputModel{}
		s.Status = StatusOK
		s.Findings = nil
		return s

	case ReuseJudgment:
		run, ok := s.FindRun(it.ID)
		if !ok {
			return s
		}
		s.ViewingRunID = ""
		s.Input = CloneInput(run.Input)
		s.Output = OutputModel{Judgment: cloneJudgment(run.Output.Judgment)}
		s.Status = StatusOK
		s.Findings = nil
		return s

	case DeleteRun:
		runs := make([]Run, 0, len(s.Runs))
		for _, r := range s.Runs {
			if r.ID != it.ID {
				runs = append(runs, r)
			}
		}
		s.Runs = runs
		// Deleting the run under replay would leave the mirror dangling.
		if s.ViewingRunID == it.ID {
			return Apply(s, ExitReplay{})
		}
		return s

	case ResetProtocol:
		next := InitialState()
		next.Runs = s.Runs
		next.Input.Mode = s.Input.Mode
		return next

	case LoadState:
		return it.State

	default:
		return s
	}
}

func statusFromPipeline(p PipelineStatus) ValidationStatus {
	switch p {
	case PipelineFailed:
		return StatusFailed
	case PipelineWarning:
		return StatusWarning
	default:
		return StatusOK
	}
}

func prependRun(runs []Run, run Run) []Run {
	out := make([]Run, 0, len(runs)+1)
	out = append(out, run)
	out = append(out, runs...)
	return out
}
