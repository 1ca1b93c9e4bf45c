// Package recipes turns raw text, images and video context into structured
// recipes through the generative model.
package recipes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
	"bonchef/internal/prompts"
	"bonchef/internal/providers/genai"
	"bonchef/internal/units"
)

// FailedMessage is the user facing text of every extraction failure.
const FailedMessage = "Het recept kon niet worden gegenereerd. Probeer het later opnieuw."

// Model is the structured-output capability used for extraction.
type Model interface {
	GenerateJSON(ctx context.Context, system string, parts ...genai.Part) (string, error)
	Download(ctx context.Context, rawURL string) (genai.Part, error)
}

// Service extracts recipes. Every result passes through the unit normalizer.
type Service struct {
	model   Model
	prompts *prompts.Repository
	logger  *infra.Logger
}

func NewService(model Model, repo *prompts.Repository, logger *infra.Logger) *Service {
	return &Service{model: model, prompts: repo, logger: infra.LoggerOrDiscard(logger)}
}

// FormatRecipe structures text with the prompt of the given variant.
func (s *Service) FormatRecipe(ctx context.Context, text string, variant prompts.Variant) (domain.Extraction, error) {
	return s.extract(ctx, variant, genai.TextPart(text))
}

// RecipeFromSocialMediaVideo structures a caption or transcript, optionally
// together with a representative frame. A frame that cannot be downloaded
// is skipped.
func (s *Service) RecipeFromSocialMediaVideo(ctx context.Context, text, imageURL string) (domain.Extraction, error) {
	parts := []genai.Part{genai.TextPart(text)}
	if strings.TrimSpace(imageURL) != "" {
		frame, err := s.model.Download(ctx, imageURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", imageURL).Msg("recipes: skip video frame")
		} else {
			parts = append(parts, frame)
		}
	}
	return s.extract(ctx, prompts.SocialVideo, parts...)
}

func (s *Service) extract(ctx context.Context, variant prompts.Variant, parts ...genai.Part) (domain.Extraction, error) {
	system, err := s.prompts.Get(variant)
	if err != nil {
		return domain.Extraction{}, failed(err)
	}

	start := time.Now()
	raw, err := s.model.GenerateJSON(ctx, system, parts...)
	if err != nil {
		return domain.Extraction{}, failed(fmt.Errorf("generate %s: %w", variant, err))
	}
	extraction, err := genai.DecodeJSON[domain.Extraction](raw)
	if err != nil {
		return domain.Extraction{}, failed(fmt.Errorf("decode %s: %w", variant, err))
	}

	extraction.Recipe = units.Normalize(sanitize(extraction.Recipe))
	s.logger.Debug().
		Str("variant", variant.String()).
		Bool("contains_food", extraction.Metadata.ContainsFood).
		Bool("enough_context", extraction.Metadata.EnoughContext).
		Dur("took", time.Since(start)).
		Msg("recipes: extracted")
	return extraction, nil
}

func failed(cause error) error {
	return domain.NewImportError(domain.ErrExtractionFailed, FailedMessage, cause)
}

// sanitize enforces the shape guarantees of GeneratedRecipe on model output.
func sanitize(r domain.GeneratedRecipe) domain.GeneratedRecipe {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.SourceName = strings.TrimSpace(r.SourceName)
	r.SourceURL = strings.TrimSpace(r.SourceURL)
	if r.NPortions < 1 {
		r.NPortions = 1
	}
	if r.TotalCookTimeMinutes < 1 {
		r.TotalCookTimeMinutes = 1
	}
	if r.Thumbnail != nil && strings.TrimSpace(*r.Thumbnail) == "" {
		r.Thumbnail = nil
	}

	groups := make([]domain.IngredientGroup, 0, len(r.Ingredients))
	for _, g := range r.Ingredients {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = domain.NoGroup
		}
		items := make([]domain.Ingredient, 0, len(g.Ingredients))
		for _, ing := range g.Ingredients {
			ing.Description = strings.TrimSpace(ing.Description)
			if ing.Description == "" {
				continue
			}
			ing.Quantity = sanitizeQuantity(ing.Quantity)
			items = append(items, ing)
		}
		groups = append(groups, domain.IngredientGroup{Name: name, Ingredients: items})
	}
	r.Ingredients = groups

	steps := make([]string, 0, len(r.Instructions))
	for _, step := range r.Instructions {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}
	r.Instructions = steps
	return r
}

func sanitizeQuantity(q *domain.QuantityRange) *domain.QuantityRange {
	if q == nil || (q.Low <= 0 && q.High <= 0) {
		return nil
	}
	out := *q
	out.Type = "range"
	if out.Low <= 0 {
		out.Low = out.High
	}
	if out.High < out.Low {
		out.High = out.Low
	}
	return &out
}
