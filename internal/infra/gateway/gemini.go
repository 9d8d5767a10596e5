package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"google.golang.org/genai"

	"github.com/aichampion/hall/internal/usecase"
)

var tracer = otel.Tracer("gateway")

// GeminiGateway adapts the Gemini API to the text-enhancement and
// image-transformation ports. Failures are returned to the caller, which
// treats them as "keep the original".
type GeminiGateway struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewGeminiGateway(ctx context.Context, apiKey, textModel, imageModel string) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &GeminiGateway{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

func (g *GeminiGateway) EnhanceVision(ctx context.Context, ec usecase.EnhanceContext, draft string) (string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.EnhanceVision")
	defer span.End()

	prompt := fmt.Sprintf(
		`The user's name is %s, affiliated with %s. Their stated vision as an AI champion is: %q. `+
			`Rewrite this vision to be more professional, inspiring, and dignified, befitting a public-sector AI leader. `+
			`Output exactly one sentence and nothing else.`,
		ec.Name, ec.Department, draft,
	)

	result, err := g.client.Models.GenerateContent(ctx,
		g.textModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "vision enhancement failed")
	}

	polished := strings.TrimSpace(result.Text())
	if polished == "" {
		return draft, nil
	}
	return polished, nil
}

func (g *GeminiGateway) SuggestAchievement(ctx context.Context, ec usecase.EnhanceContext) (string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.SuggestAchievement")
	defer span.End()

	prompt := fmt.Sprintf(
		`Champion %s, %s at %s, is being enrolled in the hall of fame. `+
			`Propose, in one creative sentence, a public-sector AI innovation achievement or professional hallmark `+
			`this person could be proud of (for example: "Led the nationwide rollout of an LLM-based civil-complaint `+
			`automation system", "A pioneer of data-driven decision making in digital government").`,
		ec.Name, ec.Role, ec.Department,
	)

	result, err := g.client.Models.GenerateContent(ctx,
		g.textModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.8),
		},
	)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "achievement suggestion failed")
	}

	return strings.TrimSpace(strings.ReplaceAll(result.Text(), `"`, "")), nil
}

// TransformPortrait sends the portrait through the image model with the
// given style instruction and returns the transformed image bytes.
func (g *GeminiGateway) TransformPortrait(ctx context.Context, image []byte, mimeType, styleInstruction string) ([]byte, string, error) {
	ctx, span := tracer.Start(ctx, "Gemini.TransformPortrait")
	defer span.End()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(styleInstruction),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.imageModel, contents, nil)
	if err != nil {
		span.RecordError(err)
		return nil, "", errors.Wrap(err, "portrait transformation failed")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return part.InlineData.Data, mime, nil
			}
		}
	}

	err = fmt.Errorf("no image returned by model %s", g.imageModel)
	span.RecordError(err)
	return nil, "", err
}
