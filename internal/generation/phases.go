package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"taming/internal/protocol"
)

// PhaseSource produces one typed result per phase. The live implementation
// calls the generation service through the retry decorator; the mock
// implementation serves deterministic fixtures. The orchestrator treats both
// identically.
type PhaseSource interface {
	Judgment(ctx context.Context, input protocol.InputModel) (protocol.JudgmentContent, error)
	Copy(ctx context.Context, input protocol.InputModel, judgmentLock string) (protocol.CopyOutput, error)
	Visual(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string) (protocol.VisualOutput, error)
	SingleScene(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string, sceneID int) (protocol.Scene, error)
	Coach(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string, scenes []protocol.Scene) (protocol.CoachOutput, error)
}

// Generator is the live PhaseSource: prompt construction, one service call
// per phase through the retry decorator, and defensive normalization of the
// raw payload into the typed phase result.
type Generator struct {
	client      LLMClient
	retry       RetryConfig
	log         *zap.Logger
	pickErosion ErosionPicker
}

// NewGenerator wires a live phase source. A nil picker gets the production
// entropy-backed one.
func NewGenerator(client LLMClient, retry RetryConfig, log *zap.Logger, pick ErosionPicker) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if pick == nil {
		pick = NewErosionPicker(nil)
	}
	return &Generator{client: client, retry: retry, log: log, pickErosion: pick}
}

func (g *Generator) generate(ctx context.Context, operation string, input protocol.InputModel, prompt string, schema map[string]any) ([]byte, error) {
	return Retry(ctx, g.retry, g.log, operation, func(ctx context.Context) ([]byte, error) {
		return g.client.GenerateJSON(ctx, systemInstruction(input.Mode), prompt, schema)
	})
}

// Wire payload shapes. Optional fields missing from an otherwise valid
// payload are substituted with empty values; this is deliberate tolerance for
// the service's best-effort schema conformance.

type judgmentPayload struct {
	ObservedClaim        string `json:"observedClaim"`
	OperationalMechanism string `json:"operationalMechanism"`
	FailurePoint         string `json:"failurePoint"`
	JudgmentLock         string `json:"judgmentLock"`
}

type copyPayload struct {
	NarrativeSpine string   `json:"narrativeSpine"`
	ResonanceLines []string `json:"resonanceLines"`
}

type scenePayload struct {
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
	Hint   string `json:"hint"`
}

type visualPayload struct {
	Scenes []scenePayload `json:"scenes"`
}

type coachPayload struct {
	DidRight   string `json:"didRight"`
	VisualTips string `json:"visualTips"`
	CopyTips   string `json:"copyTips"`
	Avoided    string `json:"avoided"`
	MusicVibe  string `json:"musicVibe"`
}

// Judgment runs the first phase: deconstruction of the topic into the
// structural judgment that anchors everything downstream.
func (g *Generator) Judgment(ctx context.Context, input protocol.InputModel) (protocol.JudgmentContent, error) {
	raw, err := g.generate(ctx, "judgment", input, judgmentPrompt(input), judgmentSchema())
	if err != nil {
		return protocol.JudgmentContent{}, err
	}
	var payload judgmentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.JudgmentContent{}, fmt.Errorf("%w: judgment payload: %v", ErrMalformed, err)
	}
	if payload.JudgmentLock == "" {
		return protocol.JudgmentContent{}, fmt.Errorf("%w: judgment payload missing judgmentLock", ErrMalformed)
	}
	return protocol.JudgmentContent{
		ObservedClaim:        payload.ObservedClaim,
		OperationalMechanism: payload.OperationalMechanism,
		FailurePoint:         payload.FailurePoint,
		JudgmentLock:         payload.JudgmentLock,
	}, nil
}

// Copy runs the second phase against the confirmed judgment lock.
func (g *Generator) Copy(ctx context.Context, input protocol.InputModel, judgmentLock string) (protocol.CopyOutput, error) {
	raw, err := g.generate(ctx, "copy", input, copyPrompt(input, judgmentLock), copySchema())
	if err != nil {
		return protocol.CopyOutput{}, err
	}
	var payload copyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.CopyOutput{}, fmt.Errorf("%w: copy payload: %v", ErrMalformed, err)
	}
	if payload.NarrativeSpine == "" {
		return protocol.CopyOutput{}, fmt.Errorf("%w: copy payload missing narrativeSpine", ErrMalformed)
	}
	keyLines := payload.ResonanceLines
	if keyLines == nil {
		keyLines = []string{}
	}
	return protocol.CopyOutput{NarrativeSpine: payload.NarrativeSpine, KeyLines: keyLines}, nil
}

func normalizeScene(s scenePayload) (protocol.Scene, error) {
	if s.ID < 1 || s.ID > protocol.SceneCount {
		return protocol.Scene{}, fmt.Errorf("%w: scene id %d out of range", ErrMalformed, s.ID)
	}
	if s.Prompt == "" {
		return protocol.Scene{}, fmt.Errorf("%w: scene %d missing prompt", ErrMalformed, s.ID)
	}
	return protocol.Scene{ID: s.ID, Prompt: s.Prompt, Hint: s.Hint}, nil
}

// Visual runs the third phase. In riot mode an erosion system is picked for
// this invocation and woven into the prompt instruction.
func (g *Generator) Visual(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string) (protocol.VisualOutput, error) {
	var erosion string
	if input.Mode == protocol.ModeRiot {
		erosion = g.pickErosion()
	}
	raw, err := g.generate(ctx, "visual", input, visualPrompt(input, judgmentLock, narrativeSpine, erosion), visualSchema())
	if err != nil {
		return protocol.VisualOutput{}, err
	}
	var payload visualPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.VisualOutput{}, fmt.Errorf("%w: visual payload: %v", ErrMalformed, err)
	}
	scenes := make([]protocol.Scene, 0, len(payload.Scenes))
	for _, s := range payload.Scenes {
		scene, err := normalizeScene(s)
		if err != nil {
			return protocol.VisualOutput{}, err
		}
		scenes = append(scenes, scene)
	}
	// Cardinality is a validation concern, not a transport failure: a 3-scene
	// response is a structural finding, not a malformed payload.
	return protocol.VisualOutput{Scenes: scenes}, nil
}

// SingleScene regenerates exactly one ordinal scene. Callers splice the
// result back into an existing scene sequence by matching id.
func (g *Generator) SingleScene(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string, sceneID int) (protocol.Scene, error) {
	var erosion string
	if input.Mode == protocol.ModeRiot {
		erosion = g.pickErosion()
	}
	raw, err := g.generate(ctx, "single_scene", input, singleScenePrompt(input, judgmentLock, narrativeSpine, sceneID, erosion), sceneSchema())
	if err != nil {
		return protocol.Scene{}, err
	}
	var payload scenePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.Scene{}, fmt.Errorf("%w: scene payload: %v", ErrMalformed, err)
	}
	if payload.Prompt == "" {
		return protocol.Scene{}, fmt.Errorf("%w: scene %d missing prompt", ErrMalformed, sceneID)
	}
	// The regenerated scene keeps the requested ordinal regardless of what
	// id the service echoed back.
	return protocol.Scene{ID: sceneID, Prompt: payload.Prompt, Hint: payload.Hint}, nil
}

// Coach runs the final retrospective phase against the latest scene set.
// Empty fields are kept empty; the coach log is advisory content and never
// fails the run.
func (g *Generator) Coach(ctx context.Context, input protocol.InputModel, judgmentLock, narrativeSpine string, scenes []protocol.Scene) (protocol.CoachOutput, error) {
	raw, err := g.generate(ctx, "coach", input, coachPrompt(input, judgmentLock, narrativeSpine, scenes), coachSchema())
	if err != nil {
		return protocol.CoachOutput{}, err
	}
	var payload coachPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.CoachOutput{}, fmt.Errorf("%w: coach payload: %v", ErrMalformed, err)
	}
	return protocol.CoachOutput{
		DidRight:   payload.DidRight,
		VisualTips: payload.VisualTips,
		CopyTips:   payload.CopyTips,
		Avoided:    payload.Avoided,
		MusicVibe:  payload.MusicVibe,
	}, nil
}

// TranslateJudgment renders a judgment into Simplified Chinese, keeping the
// structure intact.
func (g *Generator) TranslateJudgment(ctx context.Context, content protocol.JudgmentContent) (protocol.JudgmentContent, error) {
	encoded, err := json.Marshal(judgmentPayload{
		ObservedClaim:        content.ObservedClaim,
		OperationalMechanism: content.OperationalMechanism,
		FailurePoint:         content.FailurePoint,
		JudgmentLock:         content.JudgmentLock,
	})
	if err != nil {
		return protocol.JudgmentContent{}, fmt.Errorf("failed to encode judgment: %w", err)
	}
	raw, err := Retry(ctx, g.retry, g.log, "translate_judgment", func(ctx context.Context) ([]byte, error) {
		return g.client.GenerateJSON(ctx, "", translatePrompt(string(encoded)), judgmentSchema())
	})
	if err != nil {
		return protocol.JudgmentContent{}, err
	}
	var payload judgmentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.JudgmentContent{}, fmt.Errorf("%w: translated judgment: %v", ErrMalformed, err)
	}
	return protocol.JudgmentContent{
		ObservedClaim:        payload.ObservedClaim,
		OperationalMechanism: payload.OperationalMechanism,
		FailurePoint:         payload.FailurePoint,
		JudgmentLock:         payload.JudgmentLock,
	}, nil
}

// TranslateCopy renders copy into Simplified Chinese.
func (g *Generator) TranslateCopy(ctx context.Context, content protocol.CopyOutput) (protocol.CopyOutput, error) {
	encoded, err := json.Marshal(copyPayload{
		NarrativeSpine: content.NarrativeSpine,
		ResonanceLines: content.KeyLines,
	})
	if err != nil {
		return protocol.CopyOutput{}, fmt.Errorf("failed to encode copy: %w", err)
	}
	raw, err := Retry(ctx, g.retry, g.log, "translate_copy", func(ctx context.Context) ([]byte, error) {
		return g.client.GenerateJSON(ctx, "", translatePrompt(string(encoded)), copySchema())
	})
	if err != nil {
		return protocol.CopyOutput{}, err
	}
	var payload copyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return protocol.CopyOutput{}, fmt.Errorf("%w: translated copy: %v", ErrMalformed, err)
	}
	keyLines := payload.ResonanceLines
	if keyLines == nil {
		keyLines = []string{}
	}
	return protocol.CopyOutput{NarrativeSpine: payload.NarrativeSpine, KeyLines: keyLines}, nil
}
