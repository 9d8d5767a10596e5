package domain

import (
	"errors"
	"testing"
	"time"
)

func validDraft() ChampionDraft {
	return ChampionDraft{
		Name:       "Kim Hyukshin",
		Department: "Ministry of Digital Government",
		Role:       "AI Service Planner",
		Tier:       "black",
		Vision:     "Data-driven administration, AI-driven public happiness.",
		ImageURL:   "https://example.com/portrait.jpg",
		Email:      "kim@example.go.kr",
		Secret:     "hunter2",
	}
}

func TestNewChampionAssignsIDAndTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewChampion(validDraft(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected an id to be assigned")
	}
	if c.Tier != TierBlack {
		t.Fatalf("expected tier BLACK, got %s", c.Tier)
	}
	if !c.RegisteredAt.Equal(now) {
		t.Fatalf("expected registeredAt %v, got %v", now, c.RegisteredAt)
	}
	if c.ViewCount != 0 {
		t.Fatalf("expected zero initial view count")
	}
	if c.Status != StatusApproved {
		t.Fatalf("expected default status APPROVED, got %s", c.Status)
	}
}

func TestNewChampionStatus(t *testing.T) {
	draft := validDraft()
	draft.Status = "pending"
	c, err := NewChampion(draft, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", c.Status)
	}

	draft.Status = "REJECTED"
	if _, err := NewChampion(draft, time.Now()); !errors.Is(err, ValidationError{}) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewChampionRejectsUnknownTier(t *testing.T) {
	draft := validDraft()
	draft.Tier = "PLATINUM"
	_, err := NewChampion(draft, time.Now())
	if !errors.Is(err, ValidationError{}) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewChampionRejectsMissingFields(t *testing.T) {
	for _, clear := range []func(*ChampionDraft){
		func(d *ChampionDraft) { d.Name = "" },
		func(d *ChampionDraft) { d.Department = "  " },
		func(d *ChampionDraft) { d.Role = "" },
		func(d *ChampionDraft) { d.Vision = "" },
		func(d *ChampionDraft) { d.ImageURL = "" },
	} {
		draft := validDraft()
		clear(&draft)
		if _, err := NewChampion(draft, time.Now()); err == nil {
			t.Fatalf("expected rejection for draft %+v", draft)
		}
	}
}

func TestApplyEditPreservesImmutableFields(t *testing.T) {
	c, err := NewChampion(validDraft(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.ViewCount = 42

	draft := validDraft()
	draft.Name = "Edited Name"
	draft.Tier = "GREEN"
	edited, err := c.ApplyEdit(draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if edited.ID != c.ID {
		t.Fatalf("id must be immutable")
	}
	if !edited.RegisteredAt.Equal(c.RegisteredAt) {
		t.Fatalf("registeredAt must be immutable")
	}
	if edited.ViewCount != 42 {
		t.Fatalf("viewCount must be immutable through edits")
	}
	if edited.Name != "Edited Name" || edited.Tier != TierGreen {
		t.Fatalf("editable fields not applied: %+v", edited)
	}
}

func TestApplyEditKeepsStatusWhenOmitted(t *testing.T) {
	c, err := NewChampion(validDraft(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Status = StatusPending

	edited, err := c.ApplyEdit(validDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.Status != StatusPending {
		t.Fatalf("an edit without a status must keep the stored one, got %s", edited.Status)
	}

	draft := validDraft()
	draft.Status = "APPROVED"
	edited, err = c.ApplyEdit(draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.Status != StatusApproved {
		t.Fatalf("an explicit status must apply, got %s", edited.Status)
	}
}

func TestMatchCredentials(t *testing.T) {
	c := Champion{Email: "kim@example.go.kr", Secret: "hunter2"}

	if !c.MatchCredentials("  KIM@Example.GO.KR ", " hunter2 ") {
		t.Fatalf("expected trimmed, case-insensitive email match")
	}
	if !c.MatchCredentials("kim@example.go.kr", "HUNTER2") {
		t.Fatalf("expected case-insensitive secret match")
	}
	if c.MatchCredentials("kim@example.go.kr", "hunter3") {
		t.Fatalf("expected mismatch on wrong secret")
	}
	if c.MatchCredentials("other@example.com", "hunter2") {
		t.Fatalf("expected mismatch on wrong email")
	}

	empty := Champion{}
	if empty.MatchCredentials("", "") {
		t.Fatalf("champions without credentials must never match")
	}
}

func TestEvaluateRefinement(t *testing.T) {
	long := "A vision statement that is comfortably over the threshold."

	cases := []struct {
		name        string
		vision      string
		achievement string
		want        RefinementNeed
	}{
		{"both deficient", "AI.", "", RefinementNeed{Vision: true, Achievement: true}},
		{"vision ok", long, "", RefinementNeed{Vision: false, Achievement: true}},
		{"both ok", long, "Built the national AI platform.", RefinementNeed{}},
		{"whitespace only counts as missing", long, "   ", RefinementNeed{Achievement: true}},
	}

	for _, tc := range cases {
		got := EvaluateRefinement(Champion{Vision: tc.vision, Achievement: tc.achievement}, DefaultMinVisionLen, DefaultMinAchievementLen)
		if got != tc.want {
			t.Errorf("%s: got %+v want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRefinementPhaseTransitions(t *testing.T) {
	if got := PhaseUnchecked.Begin(false); got != PhaseSkipped {
		t.Fatalf("no need must skip, got %s", got)
	}
	if got := PhaseUnchecked.Begin(true); got != PhaseRefining {
		t.Fatalf("need must start refining, got %s", got)
	}
	if got := PhaseRefining.Begin(true); got != PhaseRefining {
		t.Fatalf("reopen while refining must not restart, got %s", got)
	}
	if got := PhaseDone.Begin(true); got != PhaseDone {
		t.Fatalf("done is terminal, got %s", got)
	}
	if got := PhaseRefining.Settle(); got != PhaseDone {
		t.Fatalf("settle must finish refining, got %s", got)
	}
	if got := PhaseSkipped.Settle(); got != PhaseSkipped {
		t.Fatalf("settle must not touch skipped, got %s", got)
	}

	for _, p := range []RefinementPhase{PhaseSkipped, PhaseDone} {
		if !p.Terminal() {
			t.Fatalf("%s must be terminal", p)
		}
	}
	for _, p := range []RefinementPhase{PhaseUnchecked, PhaseRefining} {
		if p.Terminal() {
			t.Fatalf("%s must not be terminal", p)
		}
	}
}
