package generation

// Response schemas declared per phase. The service's conformance is
// best-effort, so normalization still defends against missing fields.

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func judgmentSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"observedClaim":        stringProp(),
			"operationalMechanism": stringProp(),
			"failurePoint":         stringProp(),
			"judgmentLock":         stringProp(),
		},
		"required": []string{"observedClaim", "operationalMechanism", "failurePoint", "judgmentLock"},
	}
}

func copySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"narrativeSpine": stringProp(),
			"resonanceLines": map[string]any{
				"type":  "array",
				"items": stringProp(),
			},
		},
		"required": []string{"narrativeSpine", "resonanceLines"},
	}
}

func sceneSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":     map[string]any{"type": "integer"},
			"prompt": stringProp(),
			"hint":   stringProp(),
		},
		"required": []string{"id", "prompt"},
	}
}

func visualSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scenes": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 4,
				"items":    sceneSchema(),
			},
		},
		"required": []string{"scenes"},
	}
}

func coachSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"didRight":   stringProp(),
			"visualTips": stringProp(),
			"copyTips":   stringProp(),
			"avoided":    stringProp(),
			"musicVibe":  stringProp(),
		},
		"required": []string{"didRight", "visualTips", "copyTips", "avoided", "musicVibe"},
	}
}
