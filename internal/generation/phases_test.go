package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"taming/internal/protocol"
)

// scriptedClient returns canned payloads per call.
type scriptedClient struct {
	payloads [][]byte
	errs     []error
	calls    int
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema map[string]any) ([]byte, error) {
	i := c.calls
	c.calls++
	var payload []byte
	if i < len(c.payloads) {
		payload = c.payloads[i]
	}
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return payload, err
}

func newTestGenerator(client LLMClient) *Generator {
	cfg := DefaultRetryConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	cfg.Jitter = func(max time.Duration) time.Duration { return 0 }
	return NewGenerator(client, cfg, nil, func() string { return ErosionSystems[0] })
}

func TestGeneratorJudgmentRequiresLock(t *testing.T) {
	client := &scriptedClient{payloads: [][]byte{[]byte(`{"observedClaim":"a","operationalMechanism":"b","failurePoint":"c"}`)}}
	g := newTestGenerator(client)

	_, err := g.Judgment(context.Background(), protocol.InputModel{Topic: "x"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}

func TestGeneratorCopyNormalizesKeyLines(t *testing.T) {
	client := &scriptedClient{payloads: [][]byte{[]byte(`{"narrativeSpine":"spine"}`)}}
	g := newTestGenerator(client)

	out, err := g.Copy(context.Background(), protocol.InputModel{}, "lock")
	if err != nil {
		t.Fatal(err)
	}
	if out.KeyLines == nil {
		t.Fatal("missing resonanceLines must normalize to an empty slice")
	}
}

func TestGeneratorVisualToleratesShortSceneSet(t *testing.T) {
	// A 3-scene payload is structurally valid transport; cardinality is the
	// validator's finding, not a phase failure.
	client := &scriptedClient{payloads: [][]byte{[]byte(`{"scenes":[
		{"id":1,"prompt":"p1"},{"id":2,"prompt":"p2"},{"id":3,"prompt":"p3"}]}`)}}
	g := newTestGenerator(client)

	out, err := g.Visual(context.Background(), protocol.InputModel{Mode: protocol.ModeSilence}, "lock", "spine")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Scenes) != 3 {
		t.Fatalf("scenes = %d", len(out.Scenes))
	}
}

func TestGeneratorVisualRejectsBadSceneID(t *testing.T) {
	client := &scriptedClient{payloads: [][]byte{[]byte(`{"scenes":[{"id":7,"prompt":"p"}]}`)}}
	g := newTestGenerator(client)

	_, err := g.Visual(context.Background(), protocol.InputModel{}, "lock", "spine")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v", err)
	}
}

func TestGeneratorSingleSceneForcesOrdinal(t *testing.T) {
	// The service echoing the wrong id must not leak into the result.
	client := &scriptedClient{payloads: [][]byte{[]byte(`{"id":1,"prompt":"regenerated","hint":"h"}`)}}
	g := newTestGenerator(client)

	scene, err := g.SingleScene(context.Background(), protocol.InputModel{}, "lock", "spine", 3)
	if err != nil {
		t.Fatal(err)
	}
	if scene.ID != 3 {
		t.Fatalf("scene id = %d, want the requested ordinal", scene.ID)
	}
	if scene.Prompt != "regenerated" {
		t.Fatalf("prompt = %q", scene.Prompt)
	}
}

func TestGeneratorRetriesTransientPhaseFailure(t *testing.T) {
	client := &scriptedClient{
		payloads: [][]byte{nil, []byte(`{"observedClaim":"a","operationalMechanism":"b","failurePoint":"c","judgmentLock":"d"}`)},
		errs:     []error{ErrOverloaded, nil},
	}
	g := newTestGenerator(client)

	out, err := g.Judgment(context.Background(), protocol.InputModel{Topic: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if out.JudgmentLock != "d" {
		t.Fatalf("lock = %q", out.JudgmentLock)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want 2", client.calls)
	}
}
