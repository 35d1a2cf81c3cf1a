// Package export assembles a shareable artifact from a completed run.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"taming/internal/protocol"
)

// Format selects the rendered output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrRunFailed means a failed run can never be exported.
var ErrRunFailed = errors.New("run failed validation and cannot be exported")

// ErrConfirmationRequired means the run carries warnings and the caller has
// not acknowledged them.
var ErrConfirmationRequired = errors.New("run has validation warnings; export requires confirmation")

// Scene is the exported view of one visual scene.
type Scene struct {
	ID     int    `json:"id" yaml:"id"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Hint   string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Coach is the exported retrospective.
type Coach struct {
	DidRight   string `json:"didRight" yaml:"didRight"`
	VisualTips string `json:"visualTips" yaml:"visualTips"`
	CopyTips   string `json:"copyTips" yaml:"copyTips"`
	Avoided    string `json:"avoided" yaml:"avoided"`
	MusicVibe  string `json:"musicVibe" yaml:"musicVibe"`
}

// Document is the export artifact for one run.
type Document struct {
	RunID          string    `json:"runId" yaml:"runId"`
	ExportedAt     time.Time `json:"exportedAt" yaml:"exportedAt"`
	Mode           string    `json:"mode" yaml:"mode"`
	Topic          string    `json:"topic" yaml:"topic"`
	JudgmentLock   string    `json:"judgmentLock" yaml:"judgmentLock"`
	NarrativeSpine string    `json:"narrativeSpine" yaml:"narrativeSpine"`
	KeyLines       []string  `json:"keyLines" yaml:"keyLines"`
	Scenes         []Scene   `json:"scenes" yaml:"scenes"`
	Coach          Coach     `json:"coach" yaml:"coach"`
	Warnings       []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Guard enforces the export policy for a run's validation status: failed runs
// are refused outright, warned runs need explicit confirmation.
func Guard(status protocol.ValidationStatus, confirmed bool) error {
	switch status {
	case protocol.StatusFailed:
		return ErrRunFailed
	case protocol.StatusWarning:
		if !confirmed {
			return ErrConfirmationRequired
		}
	}
	return nil
}

// Bundle builds the export document from a run.
func Bundle(run protocol.Run) Document {
	var lock string
	if run.Output.Judgment.Confirmed != nil {
		lock = run.Output.Judgment.Confirmed.JudgmentLock
	}

	scenes := make([]Scene, 0, len(run.Output.Visual.Scenes))
	for _, s := range run.Output.Visual.Scenes {
		scenes = append(scenes, Scene{ID: s.ID, Prompt: s.Prompt, Hint: s.Hint})
	}

	var warnings []string
	for _, f := range run.Findings {
		warnings = append(warnings, f.Reasons...)
	}

	keyLines := run.Output.Copy.KeyLines
	if keyLines == nil {
		keyLines = []string{}
	}

	return Document{
		RunID:          run.ID,
		ExportedAt:     time.Now().UTC(),
		Mode:           string(run.Input.Mode),
		Topic:          run.Input.Topic,
		JudgmentLock:   lock,
		NarrativeSpine: run.Output.Copy.NarrativeSpine,
		KeyLines:       keyLines,
		Scenes:         scenes,
		Coach: Coach{
			DidRight:   run.Output.Coach.DidRight,
			VisualTips: run.Output.Coach.VisualTips,
			CopyTips:   run.Output.Coach.CopyTips,
			Avoided:    run.Output.Coach.Avoided,
			MusicVibe:  run.Output.Coach.MusicVibe,
		},
		Warnings: warnings,
	}
}

// Render encodes the document in the requested format.
func Render(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
