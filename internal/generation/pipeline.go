package generation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taming/internal/protocol"
	"taming/internal/validation"
)

// Pipeline sequences phases against a PhaseSource and finishes every entry
// point with validation and run assembly. Entry points differ only in which
// upstream artifacts they reuse; a phase error aborts without producing a run.
type Pipeline struct {
	source PhaseSource
	log    *zap.Logger
}

// NewPipeline wires an orchestrator over the given source.
func NewPipeline(source PhaseSource, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{source: source, log: log}
}

// Judgment generates a draft judgment for the confirm-then-run flow without
// touching downstream phases.
func (p *Pipeline) Judgment(ctx context.Context, input protocol.InputModel) (protocol.JudgmentContent, error) {
	return p.source.Judgment(ctx, input)
}

// RunFull executes all four phases from the raw input, generating a fresh
// judgment first.
func (p *Pipeline) RunFull(ctx context.Context, input protocol.InputModel) (protocol.Run, protocol.PipelineStatus, error) {
	p.log.Info("pipeline start", zap.String("entry", "full"), zap.String("mode", string(input.Mode)))

	judgment, err := p.source.Judgment(ctx, input)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("judgment phase: %w", err)
	}

	copyOut, err := p.source.Copy(ctx, input, judgment.JudgmentLock)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("copy phase: %w", err)
	}
	return p.fromVisualPhase(ctx, input, judgment, copyOut)
}

// RunFromCopy re-executes copy and everything downstream, keeping the
// confirmed judgment.
func (p *Pipeline) RunFromCopy(ctx context.Context, input protocol.InputModel, judgment protocol.JudgmentContent) (protocol.Run, protocol.PipelineStatus, error) {
	p.log.Info("pipeline start", zap.String("entry", "from_copy"))

	copyOut, err := p.source.Copy(ctx, input, judgment.JudgmentLock)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("copy phase: %w", err)
	}
	return p.fromVisualPhase(ctx, input, judgment, copyOut)
}

// RunFromVisual re-executes visual and coach, keeping judgment and copy.
func (p *Pipeline) RunFromVisual(ctx context.Context, input protocol.InputModel, judgment protocol.JudgmentContent, copyOut protocol.CopyOutput) (protocol.Run, protocol.PipelineStatus, error) {
	p.log.Info("pipeline start", zap.String("entry", "from_visual"))
	return p.fromVisualPhase(ctx, input, judgment, copyOut)
}

func (p *Pipeline) fromVisualPhase(ctx context.Context, input protocol.InputModel, judgment protocol.JudgmentContent, copyOut protocol.CopyOutput) (protocol.Run, protocol.PipelineStatus, error) {
	visual, err := p.source.Visual(ctx, input, judgment.JudgmentLock, copyOut.NarrativeSpine)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("visual phase: %w", err)
	}

	coach, err := p.source.Coach(ctx, input, judgment.JudgmentLock, copyOut.NarrativeSpine, visual.Scenes)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("coach phase: %w", err)
	}

	run, status := validation.Bundle(input, judgment, copyOut, visual, coach)
	p.log.Info("pipeline done",
		zap.String("run_id", run.ID),
		zap.String("status", string(status)),
		zap.Int("findings", len(run.Findings)))
	return run, status, nil
}

// RegenerateScene replaces exactly one scene of an existing visual set by
// ordinal, re-runs the coach against the spliced set, and re-validates. The
// other scenes are untouched.
func (p *Pipeline) RegenerateScene(ctx context.Context, input protocol.InputModel, judgment protocol.JudgmentContent, copyOut protocol.CopyOutput, visual protocol.VisualOutput, sceneID int) (protocol.Run, protocol.PipelineStatus, error) {
	if sceneID < 1 || sceneID > protocol.SceneCount {
		return protocol.Run{}, "", fmt.Errorf("scene id %d out of range 1..%d", sceneID, protocol.SceneCount)
	}
	p.log.Info("pipeline start", zap.String("entry", "scene"), zap.Int("scene_id", sceneID))

	scene, err := p.source.SingleScene(ctx, input, judgment.JudgmentLock, copyOut.NarrativeSpine, sceneID)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("scene phase: %w", err)
	}

	spliced := protocol.VisualOutput{Scenes: make([]protocol.Scene, len(visual.Scenes))}
	copy(spliced.Scenes, visual.Scenes)
	replaced := false
	for i, s := range spliced.Scenes {
		if s.ID == sceneID {
			spliced.Scenes[i] = scene
			replaced = true
			break
		}
	}
	if !replaced {
		return protocol.Run{}, "", fmt.Errorf("scene %d not present in current visual set", sceneID)
	}

	coach, err := p.source.Coach(ctx, input, judgment.JudgmentLock, copyOut.NarrativeSpine, spliced.Scenes)
	if err != nil {
		return protocol.Run{}, "", fmt.Errorf("coach phase: %w", err)
	}

	run, status := validation.Bundle(input, judgment, copyOut, spliced, coach)
	p.log.Info("pipeline done",
		zap.String("run_id", run.ID),
		zap.String("status", string(status)),
		zap.Int("findings", len(run.Findings)))
	return run, status, nil
}
