package usecase

import (
	"context"

	"github.com/aichampion/hall/internal/domain"
)

// ChampionRepository defines storage operations for champions.
type ChampionRepository interface {
	List(ctx context.Context) ([]domain.Champion, error)
	Get(ctx context.Context, id string) (domain.Champion, error)
	Create(ctx context.Context, c domain.Champion) error
	Update(ctx context.Context, c domain.Champion) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) (int64, error)
}

// EnhanceContext carries the identity fields handed to the enhancement
// capability as context.
type EnhanceContext struct {
	Name       string
	Department string
	Role       string
}

// TextEnhancer encapsulates the external text-enhancement capability.
// Callers treat any failure as "keep the original text".
type TextEnhancer interface {
	EnhanceVision(ctx context.Context, ec EnhanceContext, draft string) (string, error)
	SuggestAchievement(ctx context.Context, ec EnhanceContext) (string, error)
}

// ImageTransformer encapsulates the external image-transformation
// capability. Callers treat any failure as "keep the original image".
type ImageTransformer interface {
	TransformPortrait(ctx context.Context, image []byte, mimeType, styleInstruction string) ([]byte, string, error)
}

// BlobStore uploads image bytes and returns a stable public URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, suggestedName, mimeType string) (string, error)
}

// PortraitFetcher retrieves and re-encodes a portrait reachable only by URL.
type PortraitFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// EventPublisher fans out hall change events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
