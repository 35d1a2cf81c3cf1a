package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"taming/internal/protocol"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyReturnsInitialState(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(protocol.InitialState(), got); diff != "" {
		t.Fatalf("fresh store must yield defaults (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	state := protocol.InitialState()
	state = protocol.Apply(state, protocol.SetMode{Mode: protocol.ModeRiot})
	state = protocol.Apply(state, protocol.SetTopic{Topic: "solitude"})
	state = protocol.Apply(state, protocol.ToggleConstraint{Tag: "no-people"})

	if err := s.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(state, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveIsLastWriterWins(t *testing.T) {
	s := openTestStore(t)

	first := protocol.Apply(protocol.InitialState(), protocol.SetTopic{Topic: "first"})
	second := protocol.Apply(protocol.InitialState(), protocol.SetTopic{Topic: "second"})

	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.Topic != "second" {
		t.Fatalf("topic = %q, want last write", got.Input.Topic)
	}
}

func TestLoadDiscardsStaleSchemaVersion(t *testing.T) {
	s := openTestStore(t)

	stale := protocol.Apply(protocol.InitialState(), protocol.SetTopic{Topic: "old"})
	stale.Version = protocol.SchemaVersion + 1
	if err := s.Save(stale); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(protocol.InitialState(), got); diff != "" {
		t.Fatalf("stale snapshot must yield defaults (-want +got):\n%s", diff)
	}
}

func TestResetDeletesSnapshot(t *testing.T) {
	s := openTestStore(t)

	state := protocol.Apply(protocol.InitialState(), protocol.SetTopic{Topic: "gone"})
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.Topic != "" {
		t.Fatalf("topic survived reset: %q", got.Input.Topic)
	}
}

func TestStoreReopenSurvivesProcessRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	state := protocol.Apply(protocol.InitialState(), protocol.SetTopic{Topic: "persisted"})
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.Topic != "persisted" {
		t.Fatalf("topic = %q after reopen", got.Input.Topic)
	}
}
