package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/aichampion/hall/internal/domain"
)

func validDraft() domain.ChampionDraft {
	return domain.ChampionDraft{
		Name:       "Lee Seoyeon",
		Department: "National Data Agency",
		Role:       "ML Platform Lead",
		Tier:       "blue",
		Vision:     "Put a trustworthy AI assistant in every citizen service.",
		ImageURL:   "https://example.com/lee.jpg",
		Email:      "seoyeon@example.com",
		Secret:     "hunter2",
	}
}

func securedChampion() domain.Champion {
	c := refinedChampion()
	c.Email = "owner@example.com"
	c.Secret = "open-sesame"
	return c
}

func TestRegisterGrantsOwnership(t *testing.T) {
	repo := newMockRepo()
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	c, err := uc.Register(context.Background(), sess, validDraft())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !sess.Ledger.IsOwner(context.Background(), c.ID) {
		t.Fatalf("registering session must own the new champion")
	}
	if repo.creates != 1 {
		t.Fatalf("expected one create, got %d", repo.creates)
	}
}

func TestRegisterRejectsInvalidDraft(t *testing.T) {
	repo := newMockRepo()
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	draft := validDraft()
	draft.Tier = "PLATINUM"
	if _, err := uc.Register(context.Background(), sess, draft); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("invalid drafts must never reach the store")
	}
}

func TestViewBumpsTheCount(t *testing.T) {
	c := refinedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")

	for want := int64(1); want <= 3; want++ {
		got, err := uc.View(context.Background(), c.ID)
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if got.ViewCount != want {
			t.Fatalf("expected view count %d, got %d", want, got.ViewCount)
		}
	}
}

func TestAuthorizeOwnerPassesWithoutCredentials(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()
	sess.Ledger.Grant(context.Background(), c.ID)

	if err := uc.Authorize(context.Background(), sess, c.ID, Credentials{}); err != nil {
		t.Fatalf("owner fast path failed: %v", err)
	}
}

func TestAuthorizeMismatchIsRetryable(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	wrong := Credentials{Email: "owner@example.com", Secret: "nope"}
	for i := 0; i < 3; i++ {
		if err := uc.Authorize(context.Background(), sess, c.ID, wrong); !errors.Is(err, domain.ErrCredentialMismatch) {
			t.Fatalf("attempt %d: expected credential mismatch, got %v", i, err)
		}
	}
	if sess.Ledger.IsOwner(context.Background(), c.ID) {
		t.Fatalf("a failed challenge must not grant ownership")
	}

	// A later correct attempt still succeeds; there is no lockout.
	right := Credentials{Email: "  OWNER@example.com ", Secret: " open-sesame "}
	if err := uc.Authorize(context.Background(), sess, c.ID, right); err != nil {
		t.Fatalf("correct credentials after failures must pass: %v", err)
	}
	if !sess.Ledger.IsOwner(context.Background(), c.ID) {
		t.Fatalf("a passed challenge must grant ownership for the session")
	}
}

func TestAuthorizeMasterOverride(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	sess := newTestSession()

	disabled := NewChampionUsecase(repo, nil, "")
	if err := disabled.Authorize(context.Background(), sess, c.ID, Credentials{Secret: "letmein"}); !errors.Is(err, domain.ErrCredentialMismatch) {
		t.Fatalf("an unset master secret must disable the override, got %v", err)
	}

	enabled := NewChampionUsecase(repo, nil, "letmein")
	if err := enabled.Authorize(context.Background(), sess, c.ID, Credentials{Secret: "letmein"}); err != nil {
		t.Fatalf("master override failed: %v", err)
	}
	if !sess.Ledger.IsOwner(context.Background(), c.ID) {
		t.Fatalf("the override must grant ownership like a passed challenge")
	}
}

func TestUpdateGuardedByCredentials(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	draft := validDraft()
	draft.Name = "Renamed Champion"

	if _, err := uc.Update(context.Background(), sess, c.ID, draft, Credentials{Email: c.Email, Secret: "wrong"}); !errors.Is(err, domain.ErrCredentialMismatch) {
		t.Fatalf("expected credential mismatch, got %v", err)
	}
	if repo.stored(c.ID).Name != c.Name {
		t.Fatalf("a rejected update must not mutate the record")
	}

	updated, err := uc.Update(context.Background(), sess, c.ID, draft, Credentials{Email: c.Email, Secret: c.Secret})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Renamed Champion" {
		t.Fatalf("expected the edit to apply, got %q", updated.Name)
	}
	if updated.ID != c.ID || !updated.RegisteredAt.Equal(c.RegisteredAt) {
		t.Fatalf("id and registration time are immutable")
	}
}

func TestUpdateClearsSessionViewState(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	// A refined local copy, as left behind by an earlier failed store write.
	stale := c
	stale.Vision = "An enhanced vision statement comfortably over the threshold."
	sess.RecordView(stale)

	draft := validDraft()
	draft.Vision = "A brand new vision typed in by the owner after refinement."
	if _, err := uc.Update(context.Background(), sess, c.ID, draft, Credentials{Email: c.Email, Secret: c.Secret}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, ok := sess.ViewOf(c.ID); ok {
		t.Fatalf("a successful edit must drop the local refined copy")
	}
}

func TestDeleteRevokesOwnership(t *testing.T) {
	c := securedChampion()
	repo := newMockRepo(c)
	uc := NewChampionUsecase(repo, nil, "")
	sess := newTestSession()

	if err := uc.Delete(context.Background(), sess, c.ID, Credentials{Email: c.Email, Secret: c.Secret}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if sess.Ledger.IsOwner(context.Background(), c.ID) {
		t.Fatalf("ownership must be revoked with the record")
	}
	if _, err := repo.Get(context.Background(), c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected the record to be gone, got %v", err)
	}
}
