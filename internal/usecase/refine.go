package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/aichampion/hall/internal/domain"
	"github.com/aichampion/hall/internal/session"
)

const portraitStyleInstruction = `IMPORTANT: TRANSFORM THIS IMAGE WHILE MAINTAINING ABSOLUTE FACIAL IDENTITY. ` +
	`The facial features, bone structure, and eyes of the person in the original photo must remain fully ` +
	`recognizable. Apply a high-end professional portrait photography style: sophisticated minimalist dark ` +
	`studio background with subtle technological patterns, professional three-point lighting with cinematic ` +
	`contrast, crisp detail and professional retouching. If needed, subtly refine the outfit to premium ` +
	`business attire. The overall vibe is an elite public-sector AI leader.`

// RefineUsecase runs the record refinement workflow: given a champion a
// session just opened, it decides whether the profile texts need enhancement,
// calls the enhancement capability for the deficient fields, and persists the
// merge exactly once per session.
type RefineUsecase struct {
	repo      ChampionRepository
	text      TextEnhancer
	image     ImageTransformer
	blobs     BlobStore
	portraits PortraitFetcher
	signal    EventPublisher

	minVision      int
	minAchievement int
}

func NewRefineUsecase(
	repo ChampionRepository,
	text TextEnhancer,
	image ImageTransformer,
	blobs BlobStore,
	portraits PortraitFetcher,
	signal EventPublisher,
	minVision int,
	minAchievement int,
) *RefineUsecase {
	if minVision <= 0 {
		minVision = domain.DefaultMinVisionLen
	}
	if minAchievement <= 0 {
		minAchievement = domain.DefaultMinAchievementLen
	}
	return &RefineUsecase{
		repo:           repo,
		text:           text,
		image:          image,
		blobs:          blobs,
		portraits:      portraits,
		signal:         signal,
		minVision:      minVision,
		minAchievement: minAchievement,
	}
}

// Auto runs the automatic refinement pass for a freshly opened detail view.
// The session's phase machine guarantees at most one pass per champion per
// session and suppresses a second pass while one is in flight. Failures are
// silent: the pass is opportunistic and the record keeps its current values.
func (uc *RefineUsecase) Auto(ctx context.Context, sess *session.Session, c domain.Champion) {
	need := domain.EvaluateRefinement(c, uc.minVision, uc.minAchievement)

	start, generation := sess.OpenDetail(c.ID, need.Any())
	if !start {
		return
	}
	defer sess.SettleRefinement(c.ID)

	ctx, span := tracer.Start(ctx, "Refine.Auto")
	defer span.End()

	merged, applied := uc.enhanceTexts(ctx, c, need)
	if !applied {
		return
	}

	if err := uc.repo.Update(ctx, merged); err != nil {
		// The enhanced values survive only in session view state; the next
		// manual trigger retries, there is no automatic retry.
		span.RecordError(err)
		slog.Warn("refined champion not persisted", "champion", c.ID, "error", err)
		sess.ApplyView(merged, generation)
		return
	}

	// The store is authoritative again; any leftover local copy would mask
	// later edits.
	sess.ClearView(c.ID)
	uc.publish(ctx, domain.EventChampionRefined, c.ID)
}

// Manual re-runs both text enhancements for an already-authorized owner,
// bypassing the per-session memo, and optionally restyles the portrait.
// Portrait failure never blocks the text refinement.
func (uc *RefineUsecase) Manual(ctx context.Context, sess *session.Session, id string, withPortrait bool) (domain.Champion, error) {
	ctx, span := tracer.Start(ctx, "Refine.Manual")
	defer span.End()

	c, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Champion{}, err
	}

	merged, _ := uc.enhanceTexts(ctx, c, domain.RefinementNeed{Vision: true, Achievement: true})

	if withPortrait {
		url, err := uc.stylePortrait(ctx, merged)
		if err != nil {
			span.RecordError(err)
			slog.Warn("portrait transformation skipped", "champion", id, "error", err)
		} else {
			merged.ImageURL = url
		}
	}

	if err := uc.repo.Update(ctx, merged); err != nil {
		span.RecordError(err)
		sess.RecordView(merged)
		return domain.Champion{}, errors.Wrap(err, "refined champion not persisted")
	}

	sess.ClearView(id)
	uc.publish(ctx, domain.EventChampionRefined, id)
	return merged, nil
}

// enhanceTexts issues the vision and achievement enhancements independently
// and waits for both to settle before returning the merge. Each call may fail
// on its own; a failed call leaves its field unchanged while the other's
// result still applies.
func (uc *RefineUsecase) enhanceTexts(ctx context.Context, c domain.Champion, need domain.RefinementNeed) (domain.Champion, bool) {
	ec := EnhanceContext{Name: c.Name, Department: c.Department, Role: c.Role}

	merged := c
	applied := false

	var mu sync.Mutex
	var wg sync.WaitGroup

	if need.Vision {
		wg.Add(1)
		go func() {
			defer wg.Done()
			polished, err := uc.text.EnhanceVision(ctx, ec, c.Vision)
			if err != nil {
				slog.Warn("vision enhancement failed", "champion", c.ID, "error", err)
				return
			}
			if polished == "" || polished == c.Vision {
				return
			}
			mu.Lock()
			merged.Vision = polished
			applied = true
			mu.Unlock()
		}()
	}

	if need.Achievement {
		wg.Add(1)
		go func() {
			defer wg.Done()
			suggested, err := uc.text.SuggestAchievement(ctx, ec)
			if err != nil {
				slog.Warn("achievement suggestion failed", "champion", c.ID, "error", err)
				return
			}
			if suggested == "" || suggested == c.Achievement {
				return
			}
			mu.Lock()
			merged.Achievement = suggested
			applied = true
			mu.Unlock()
		}()
	}

	wg.Wait()
	return merged, applied
}

// stylePortrait fetches the current portrait, transforms it, uploads the
// result, and only then hands back the new stable URL.
func (uc *RefineUsecase) stylePortrait(ctx context.Context, c domain.Champion) (string, error) {
	if uc.image == nil || uc.blobs == nil || uc.portraits == nil {
		return "", fmt.Errorf("portrait pipeline not configured")
	}

	data, mimeType, err := uc.portraits.Fetch(ctx, c.ImageURL)
	if err != nil {
		return "", errors.Wrap(err, "portrait fetch failed")
	}

	styled, styledMime, err := uc.image.TransformPortrait(ctx, data, mimeType, portraitStyleInstruction)
	if err != nil {
		return "", err
	}

	url, err := uc.blobs.Upload(ctx, styled, c.Name, styledMime)
	if err != nil {
		return "", errors.Wrap(err, "portrait upload failed")
	}
	return url, nil
}

func (uc *RefineUsecase) publish(ctx context.Context, t domain.EventType, id string) {
	if uc.signal == nil {
		return
	}
	event := domain.Event{Type: t, ChampionID: id, Timestamp: time.Now().UTC()}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.Debug("event publish failed", "type", t, "champion", id, "error", err)
	}
}
