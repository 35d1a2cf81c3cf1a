package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taming/internal/protocol"
)

var (
	runTopic       string
	runMode        string
	runIntensity   int
	runScale       string
	runLang        string
	runConstraints []string
	runYes         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: judgment, copy, visual, coach",
	Long: `Generates a structural judgment for the topic, asks for confirmation of
its anchor, then runs the copy, visual and coach phases. The result is
validated for drift and recorded in history.

Example:
  taming run --topic "procrastination" --mode riot --intensity 4`,
	RunE: runPipeline,
}

var resumeCmd = &cobra.Command{
	Use:       "resume [copy|visual]",
	Short:     "Re-run the pipeline from the copy or visual phase",
	Long:      `Keeps the confirmed judgment (and, for visual, the existing copy) and re-executes everything downstream.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"copy", "visual"},
	RunE:      resumePipeline,
}

var sceneCmd = &cobra.Command{
	Use:   "scene [id]",
	Short: "Regenerate a single visual scene by ordinal (1-4)",
	Long:  `Replaces one scene in the current visual set, re-runs the coach against the updated set and re-validates.`,
	Args:  cobra.ExactArgs(1),
	RunE:  regenerateScene,
}

func init() {
	runCmd.Flags().StringVarP(&runTopic, "topic", "t", "", "topic to deconstruct (required)")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "generation mode: silence or riot")
	runCmd.Flags().IntVarP(&runIntensity, "intensity", "i", 0, "intensity level 1-5")
	runCmd.Flags().StringVar(&runScale, "scale", "", "output scale: standard or enhanced")
	runCmd.Flags().StringVar(&runLang, "lang", "", "visual prompt language: en or zh_en")
	runCmd.Flags().StringSliceVarP(&runConstraints, "constraint", "c", nil, "toggle a constraint tag (repeatable)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "accept the judgment anchor without prompting")
	_ = runCmd.MarkFlagRequired("topic")
}

func parseMode(s string) (protocol.Mode, error) {
	switch strings.ToLower(s) {
	case "silence", "human_silence":
		return protocol.ModeSilence, nil
	case "riot", "mind_riot":
		return protocol.ModeRiot, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want silence or riot)", s)
	}
}

func applyInputFlags(a *app) error {
	if runMode != "" {
		mode, err := parseMode(runMode)
		if err != nil {
			return err
		}
		a.session.Dispatch(protocol.SetMode{Mode: mode})
	}
	a.session.Dispatch(protocol.SetTopic{Topic: runTopic})
	if runIntensity != 0 {
		a.session.Dispatch(protocol.SetIntensity{Level: runIntensity})
	}
	if runScale != "" {
		switch strings.ToLower(runScale) {
		case string(protocol.ScaleStandard):
			a.session.Dispatch(protocol.SetOutputScale{Scale: protocol.ScaleStandard})
		case string(protocol.ScaleEnhanced):
			a.session.Dispatch(protocol.SetOutputScale{Scale: protocol.ScaleEnhanced})
		default:
			return fmt.Errorf("unknown scale %q (want standard or enhanced)", runScale)
		}
	}
	if runLang != "" {
		switch strings.ToLower(runLang) {
		case string(protocol.LangEnglish):
			a.session.Dispatch(protocol.SetVisualLang{Lang: protocol.LangEnglish})
		case string(protocol.LangBilingual):
			a.session.Dispatch(protocol.SetVisualLang{Lang: protocol.LangBilingual})
		default:
			return fmt.Errorf("unknown lang %q (want en or zh_en)", runLang)
		}
	}
	for _, tag := range runConstraints {
		a.session.Dispatch(protocol.ToggleConstraint{Tag: tag})
	}
	return nil
}

func confirmAnchor(draft protocol.JudgmentContent) (bool, error) {
	fmt.Println("\n=== Judgment ===")
	fmt.Printf("Observed claim:  %s\n", draft.ObservedClaim)
	fmt.Printf("Mechanism:       %s\n", draft.OperationalMechanism)
	fmt.Printf("Failure point:   %s\n", draft.FailurePoint)
	fmt.Printf("Anchor:          %s\n\n", draft.JudgmentLock)

	if runYes {
		return true, nil
	}
	fmt.Print("Confirm this anchor and continue? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.session.State().Replaying() {
		a.session.Dispatch(protocol.ExitReplay{})
	}
	if err := applyInputFlags(a); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	state := a.session.State()
	fmt.Printf("Generating judgment for %q (%s)...\n", state.Input.Topic, state.Input.Mode)
	draft, err := a.pipeline.Judgment(ctx, state.Input)
	if err != nil {
		return fmt.Errorf("judgment phase: %w", err)
	}
	a.session.Dispatch(protocol.SetJudgmentDraft{Draft: draft})

	ok, err := confirmAnchor(draft)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Anchor rejected; draft kept. Re-run to regenerate.")
		return nil
	}
	state = a.session.Dispatch(protocol.ConfirmJudgment{})

	fmt.Println("Running copy, visual and coach phases...")
	run, status, err := a.pipeline.RunFromCopy(ctx, state.Input, draft)
	if err != nil {
		return err
	}
	a.session.Dispatch(protocol.IngestResult{Run: run, Status: status})
	printRun(run, status)
	return nil
}

func resumePipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	if state.Replaying() {
		return fmt.Errorf("cannot resume while viewing run %s; use history or reuse first", state.ViewingRunID)
	}
	confirmed := state.Output.Judgment.Confirmed
	if confirmed == nil {
		return fmt.Errorf("no confirmed judgment; run the full pipeline first")
	}

	ctx, cancel := signalContext()
	defer cancel()

	var run protocol.Run
	var status protocol.PipelineStatus
	switch args[0] {
	case "copy":
		run, status, err = a.pipeline.RunFromCopy(ctx, state.Input, *confirmed)
	case "visual":
		if state.Output.Copy.NarrativeSpine == "" {
			return fmt.Errorf("no copy output to resume from; use 'resume copy'")
		}
		run, status, err = a.pipeline.RunFromVisual(ctx, state.Input, *confirmed, state.Output.Copy)
	default:
		return fmt.Errorf("unknown resume point %q (want copy or visual)", args[0])
	}
	if err != nil {
		return err
	}
	a.session.Dispatch(protocol.IngestResult{Run: run, Status: status})
	printRun(run, status)
	return nil
}

func regenerateScene(cmd *cobra.Command, args []string) error {
	sceneID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid scene id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	if state.Replaying() {
		return fmt.Errorf("cannot regenerate while viewing run %s", state.ViewingRunID)
	}
	confirmed := state.Output.Judgment.Confirmed
	if confirmed == nil {
		return fmt.Errorf("no confirmed judgment; run the full pipeline first")
	}
	if len(state.Output.Visual.Scenes) == 0 {
		return fmt.Errorf("no visual scenes to regenerate; run the pipeline first")
	}

	ctx, cancel := signalContext()
	defer cancel()

	run, status, err := a.pipeline.RegenerateScene(ctx, state.Input, *confirmed, state.Output.Copy, state.Output.Visual, sceneID)
	if err != nil {
		return err
	}
	a.session.Dispatch(protocol.IngestResult{Run: run, Status: status})
	printRun(run, status)
	return nil
}

// pipelineStatusFor recovers the invocation-time status of a stored run.
func pipelineStatusFor(run protocol.Run) protocol.PipelineStatus {
	if run.Status == protocol.RunFailed {
		return protocol.PipelineFailed
	}
	if len(run.Findings) > 0 {
		return protocol.PipelineWarning
	}
	return protocol.PipelineCompleted
}

func printRun(run protocol.Run, status protocol.PipelineStatus) {
	fmt.Printf("\nRun %s finished: %s\n", run.ID, status)

	for _, f := range run.Findings {
		severity := "advisory"
		if f.Blocking {
			severity = "blocking"
		}
		fmt.Printf("  [%s/%s]\n", f.Phase, severity)
		for _, reason := range f.Reasons {
			fmt.Printf("    - %s\n", reason)
		}
	}

	if run.Output.Copy.NarrativeSpine != "" {
		fmt.Println("\n=== Narrative ===")
		fmt.Println(run.Output.Copy.NarrativeSpine)
		for _, line := range run.Output.Copy.KeyLines {
			fmt.Printf("  * %s\n", line)
		}
	}
	if len(run.Output.Visual.Scenes) > 0 {
		fmt.Println("\n=== Scenes ===")
		for _, s := range run.Output.Visual.Scenes {
			fmt.Printf("[%d] %s\n", s.ID, s.Prompt)
			if s.Hint != "" {
				fmt.Printf("    %s\n", s.Hint)
			}
		}
	}
	if run.Output.Coach.DidRight != "" {
		fmt.Println("\n=== Coach ===")
		fmt.Printf("Did right:   %s\n", run.Output.Coach.DidRight)
		fmt.Printf("Visual tips: %s\n", run.Output.Coach.VisualTips)
		fmt.Printf("Copy tips:   %s\n", run.Output.Coach.CopyTips)
		fmt.Printf("Avoided:     %s\n", run.Output.Coach.Avoided)
		fmt.Printf("Music vibe:  %s\n", run.Output.Coach.MusicVibe)
	}
}
