// Package importer turns import jobs into validated recipes. The Processor
// dispatches on the job's source type; the Runner persists the outcome.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bonchef/internal/domain"
	"bonchef/internal/fetcher"
	"bonchef/internal/infra"
	"bonchef/internal/prompts"
	"bonchef/internal/validation"
)

// PageFetcher downloads web pages.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

// RecipeExtractor structures content into recipes.
type RecipeExtractor interface {
	FormatRecipe(ctx context.Context, text string, variant prompts.Variant) (domain.Extraction, error)
	RecipeFromSocialMediaVideo(ctx context.Context, text, imageURL string) (domain.Extraction, error)
}

// TextDetector runs OCR on a local file.
type TextDetector interface {
	DetectText(ctx context.Context, localPath string) (string, error)
}

// ThumbnailGenerator renders and stores an image for a recipe description.
type ThumbnailGenerator interface {
	GenerateThumbnail(ctx context.Context, description string) (string, error)
}

// Transcriber turns an audio recording into text.
type Transcriber interface {
	TranscribeFromURL(ctx context.Context, audioURL string) domain.Result[string]
}

// PhotoAnalyzer describes a dish photo.
type PhotoAnalyzer interface {
	AnalyzePhoto(ctx context.Context, photoURL string) domain.Result[domain.PhotoAnalysis]
}

// VideoScraper reads public metadata of social videos.
type VideoScraper interface {
	ScrapeInstagramReel(ctx context.Context, rawURL string) domain.Result[domain.VideoPost]
	ScrapeTikTok(ctx context.Context, rawURL string) domain.Result[domain.VideoPost]
}

// VideoProcessor produces a transcript and a frame collage for a video.
type VideoProcessor interface {
	ProcessURL(ctx context.Context, videoURL string) domain.Result[domain.ProcessedVideo]
}

// Deps are the collaborators of a Processor.
type Deps struct {
	Fetcher     PageFetcher
	Recipes     RecipeExtractor
	Images      domain.ImageStore
	OCR         TextDetector
	Thumbnails  ThumbnailGenerator
	Transcriber Transcriber
	Photos      PhotoAnalyzer
	Videos      VideoScraper
	VideoProc   VideoProcessor
	// HTTPClient downloads user images for OCR.
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Processor runs a single import job to completion or failure. It never
// retries; retries belong to the fetcher.
type Processor struct {
	deps     Deps
	client   *http.Client
	logger   *infra.Logger
	tempDir  string
	maxImage int64
}

func NewProcessor(deps Deps) *Processor {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Processor{
		deps:     deps,
		client:   client,
		logger:   infra.LoggerOrDiscard(deps.Logger),
		maxImage: 15 << 20,
	}
}

// Process produces the recipe for job. Every returned error is a
// *domain.ImportError whose message is safe to show to the user.
func (p *Processor) Process(ctx context.Context, job domain.ImportJob) (domain.GeneratedRecipe, error) {
	log := p.logger.With().Str("job_id", job.ID).Str("source_type", string(job.SourceType)).Logger()
	log.Info().Msg("importer: processing job")

	var (
		recipe domain.GeneratedRecipe
		err    error
	)
	switch job.SourceType {
	case domain.SourceURL:
		recipe, err = p.fromURL(ctx, job.SourceData)
	case domain.SourceImage:
		recipe, err = p.fromImage(ctx, job.SourceData)
	case domain.SourceText:
		recipe, err = p.fromText(ctx, job.SourceData)
	case domain.SourceVerticalVideo:
		recipe, err = p.fromVerticalVideo(ctx, job.SourceData)
	case domain.SourceDishcovery:
		recipe, err = p.fromDishcovery(ctx, job.SourceData)
	default:
		err = domain.NewImportError(domain.ErrUnsupportedSourceType, msgUnsupportedSource,
			fmt.Errorf("source type %q", job.SourceType))
	}
	if err != nil {
		ie := toImportError(err)
		log.Warn().Err(ie.Cause).Str("kind", kindName(ie)).Str("message", ie.Message).Msg("importer: job failed")
		return domain.GeneratedRecipe{}, ie
	}
	log.Info().Str("title", recipe.Title).Msg("importer: job produced recipe")
	return recipe, nil
}

// accept applies the content policy to an extraction.
func (p *Processor) accept(ext domain.Extraction, sourceType domain.SourceType) error {
	verdict := validation.Validate(ext.Metadata, sourceType)
	if verdict.IsError {
		return domain.NewImportError(domain.ErrValidationRejected, verdict.Message,
			fmt.Errorf("containsFood=%t enoughContext=%t", ext.Metadata.ContainsFood, ext.Metadata.EnoughContext))
	}
	if verdict.Warning != "" {
		p.logger.Info().Str("warning", verdict.Warning).Str("source_type", string(sourceType)).Msg("importer: accepted with warning")
	}
	return nil
}

func toImportError(err error) *domain.ImportError {
	if ie, ok := domain.AsImportError(err); ok {
		return ie
	}
	return domain.NewImportError(domain.ErrExtractionFailed, msgGeneric, err)
}

func kindName(ie *domain.ImportError) string {
	if ie.Kind == nil {
		return "unknown"
	}
	return ie.Kind.Error()
}

// NormalizeURL validates a user supplied link and returns its canonical form:
// lower-case scheme and host, no fragment.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

func hostName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
