package session

import (
	"testing"
	"time"

	"github.com/aichampion/hall/internal/domain"
)

func TestOpenDetailStartsRefinementOnce(t *testing.T) {
	s := newSession("sess_a", nil)

	start, _ := s.OpenDetail("champ_1", true)
	if !start {
		t.Fatalf("first open with need must start a pass")
	}

	// Reopen while the pass is in flight.
	start, _ = s.OpenDetail("champ_1", true)
	if start {
		t.Fatalf("second open must not start a concurrent pass")
	}

	s.SettleRefinement("champ_1")
	if got := s.Phase("champ_1"); got != domain.PhaseDone {
		t.Fatalf("expected Done after settle, got %s", got)
	}

	// Reopen after completion.
	start, _ = s.OpenDetail("champ_1", true)
	if start {
		t.Fatalf("open after Done must not start another pass")
	}
}

func TestOpenDetailSkipsWhenNotNeeded(t *testing.T) {
	s := newSession("sess_a", nil)

	start, _ := s.OpenDetail("champ_1", false)
	if start {
		t.Fatalf("no need must not start a pass")
	}
	if got := s.Phase("champ_1"); got != domain.PhaseSkipped {
		t.Fatalf("expected Skipped, got %s", got)
	}

	// Skipped is terminal for the session even if the record would now
	// qualify.
	start, _ = s.OpenDetail("champ_1", true)
	if start {
		t.Fatalf("skipped champion must stay skipped this session")
	}
}

func TestApplyViewDiscardsStaleGenerations(t *testing.T) {
	s := newSession("sess_a", nil)

	_, gen1 := s.OpenDetail("champ_1", true)
	s.OpenDetail("champ_2", false) // user moved on

	if s.ApplyView(domain.Champion{ID: "champ_1"}, gen1) {
		t.Fatalf("stale generation must be discarded from view state")
	}
	if _, ok := s.ViewOf("champ_1"); ok {
		t.Fatalf("stale merge must not appear in view state")
	}

	_, gen3 := s.OpenDetail("champ_3", true)
	if !s.ApplyView(domain.Champion{ID: "champ_3"}, gen3) {
		t.Fatalf("current generation must be applied")
	}
	if _, ok := s.ViewOf("champ_3"); !ok {
		t.Fatalf("applied merge must be visible")
	}
}

func TestRegistryReturnsSameSession(t *testing.T) {
	r := NewRegistry(nil, time.Minute)

	id := r.NewID()
	a := r.Get(id)
	b := r.Get(id)
	if a != b {
		t.Fatalf("expected the same session for the same id")
	}

	other := r.Get(r.NewID())
	if other == a {
		t.Fatalf("expected distinct sessions for distinct ids")
	}
}
