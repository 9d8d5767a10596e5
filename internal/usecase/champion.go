package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/aichampion/hall/internal/domain"
	"github.com/aichampion/hall/internal/session"
)

var tracer = otel.Tracer("usecase")

// Credentials are what a non-owner presents at the credential challenge.
type Credentials struct {
	Email  string
	Secret string
}

func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Secret) == ""
}

type ChampionUsecase struct {
	repo   ChampionRepository
	signal EventPublisher

	// masterSecret empty disables the operator override.
	masterSecret string
}

func NewChampionUsecase(repo ChampionRepository, signal EventPublisher, masterSecret string) *ChampionUsecase {
	return &ChampionUsecase{
		repo:         repo,
		signal:       signal,
		masterSecret: masterSecret,
	}
}

func (uc *ChampionUsecase) List(ctx context.Context) ([]domain.Champion, error) {
	return uc.repo.List(ctx)
}

func (uc *ChampionUsecase) Get(ctx context.Context, id string) (domain.Champion, error) {
	return uc.repo.Get(ctx, id)
}

// Register creates a champion from a draft and grants the registering
// session ownership of it.
func (uc *ChampionUsecase) Register(ctx context.Context, sess *session.Session, draft domain.ChampionDraft) (domain.Champion, error) {
	ctx, span := tracer.Start(ctx, "Champion.Register")
	defer span.End()

	c, err := domain.NewChampion(draft, time.Now())
	if err != nil {
		span.RecordError(err)
		return domain.Champion{}, err
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		span.RecordError(err)
		return domain.Champion{}, errors.Wrap(err, "champion creation failed")
	}

	sess.Ledger.Grant(ctx, c.ID)
	uc.publish(ctx, domain.EventChampionRegistered, c.ID)

	return c, nil
}

// View records a detail view: the view count is bumped atomically and the
// fresh row is returned. The count never decreases.
func (uc *ChampionUsecase) View(ctx context.Context, id string) (domain.Champion, error) {
	c, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Champion{}, err
	}

	count, err := uc.repo.IncrementViewCount(ctx, id)
	if err != nil {
		// The detail view still renders; the increment is best-effort.
		slog.Warn("view count increment failed", "champion", id, "error", err)
		return c, nil
	}
	c.ViewCount = count
	return c, nil
}

// Authorize implements the guarded-action protocol: owners pass immediately;
// everyone else must match the champion's credentials or the master
// override, which grants ownership for the rest of the session. A mismatch
// is recoverable and may be retried indefinitely.
func (uc *ChampionUsecase) Authorize(ctx context.Context, sess *session.Session, id string, creds Credentials) error {
	if sess.Ledger.IsOwner(ctx, id) {
		return nil
	}

	c, err := uc.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if uc.masterSecret != "" && strings.TrimSpace(creds.Secret) == uc.masterSecret {
		slog.Info("master override used", "session", sess.ID, "champion", id)
		sess.Ledger.Grant(ctx, id)
		return nil
	}

	if c.MatchCredentials(creds.Email, creds.Secret) {
		sess.Ledger.Grant(ctx, id)
		return nil
	}

	return domain.ErrCredentialMismatch
}

// Update performs a guarded edit. ID, RegisteredAt and ViewCount are
// immutable; the write is last-writer-wins.
func (uc *ChampionUsecase) Update(ctx context.Context, sess *session.Session, id string, draft domain.ChampionDraft, creds Credentials) (domain.Champion, error) {
	ctx, span := tracer.Start(ctx, "Champion.Update")
	defer span.End()

	if err := uc.Authorize(ctx, sess, id, creds); err != nil {
		return domain.Champion{}, err
	}

	current, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Champion{}, err
	}

	edited, err := current.ApplyEdit(draft)
	if err != nil {
		span.RecordError(err)
		return domain.Champion{}, err
	}

	if err := uc.repo.Update(ctx, edited); err != nil {
		span.RecordError(err)
		return domain.Champion{}, errors.Wrap(err, "champion update failed")
	}

	// Drop any local refined copy so the detail view serves the edit.
	sess.ClearView(id)
	uc.publish(ctx, domain.EventChampionUpdated, id)
	return edited, nil
}

// Delete performs a guarded delete and revokes the session's ownership of
// the removed champion.
func (uc *ChampionUsecase) Delete(ctx context.Context, sess *session.Session, id string, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "Champion.Delete")
	defer span.End()

	if err := uc.Authorize(ctx, sess, id, creds); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "champion deletion failed")
	}

	sess.Ledger.Revoke(ctx, id)
	sess.ClearView(id)
	uc.publish(ctx, domain.EventChampionDeleted, id)
	return nil
}

func (uc *ChampionUsecase) publish(ctx context.Context, t domain.EventType, id string) {
	if uc.signal == nil {
		return
	}
	event := domain.Event{Type: t, ChampionID: id, Timestamp: time.Now().UTC()}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.Debug("event publish failed", "type", t, "champion", id, "error", err)
	}
}
