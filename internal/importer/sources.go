package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"bonchef/internal/domain"
	"bonchef/internal/extractor"
	"bonchef/internal/prompts"
	"bonchef/internal/providers/social"
	"bonchef/internal/storage"
)

func (p *Processor) fromURL(ctx context.Context, raw string) (domain.GeneratedRecipe, error) {
	pageURL, err := NormalizeURL(raw)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrInvalidPayload, msgInvalidURL, err)
	}

	resp, err := p.deps.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrFetchExhausted, msgFetchFailed, err)
	}
	page, err := extractor.Extract(string(resp.Body))
	if err != nil || strings.TrimSpace(page.TextForLLM) == "" {
		if err == nil {
			err = fmt.Errorf("no content")
		}
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrExtractionFailed, msgPageUnreadable,
			fmt.Errorf("extract %s: %w", pageURL, err))
	}

	ext, err := p.deps.Recipes.FormatRecipe(ctx, page.TextForLLM, prompts.WebRecipe)
	if err != nil {
		return domain.GeneratedRecipe{}, err
	}
	if err := p.accept(ext, domain.SourceURL); err != nil {
		return domain.GeneratedRecipe{}, err
	}

	recipe := ext.Recipe
	source := page.BestImageURL
	if source == "" && recipe.Thumbnail != nil {
		source = *recipe.Thumbnail
	}
	// UploadFromURL resolves an empty or unreachable source to the placeholder.
	thumb, err := p.deps.Images.UploadFromURL(ctx, source)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrExtractionFailed, msgGeneric, err)
	}
	recipe.Thumbnail = &thumb
	recipe.SourceURL = pageURL
	if recipe.SourceName == "" {
		recipe.SourceName = hostName(pageURL)
	}
	return recipe, nil
}

func (p *Processor) fromImage(ctx context.Context, raw string) (domain.GeneratedRecipe, error) {
	imageURL, err := NormalizeURL(raw)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrInvalidPayload, msgInvalidURL, err)
	}
	text, err := p.detectRemoteText(ctx, imageURL)
	if err != nil {
		return domain.GeneratedRecipe{}, err
	}

	ext, err := p.deps.Recipes.FormatRecipe(ctx, text, prompts.WebRecipe)
	if err != nil {
		return domain.GeneratedRecipe{}, err
	}
	if err := p.accept(ext, domain.SourceImage); err != nil {
		return domain.GeneratedRecipe{}, err
	}
	recipe := ext.Recipe
	recipe.Thumbnail = &imageURL
	return recipe, nil
}

// detectRemoteText downloads the image into a temporary file for OCR. The
// file is removed on every exit path.
func (p *Processor) detectRemoteText(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", domain.NewImportError(domain.ErrInvalidPayload, msgInvalidURL, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", domain.NewImportError(domain.ErrExtractionFailed, msgImageUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewImportError(domain.ErrExtractionFailed, msgImageUnreachable,
			fmt.Errorf("download %s: status %d", imageURL, resp.StatusCode))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !storage.IsSupportedImageType(ct) {
		return "", domain.NewImportError(domain.ErrUnsupportedImageFormat, storage.UnsupportedFormatMessage,
			fmt.Errorf("content type %q", ct))
	}

	tmp, err := os.CreateTemp(p.tempDir, "bonchef-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, io.LimitReader(resp.Body, p.maxImage))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", domain.NewImportError(domain.ErrExtractionFailed, msgImageUnreachable, err)
	}

	text, err := p.deps.OCR.DetectText(ctx, tmp.Name())
	if err != nil {
		return "", domain.NewImportError(domain.ErrExtractionFailed, msgNoTextInImage, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewImportError(domain.ErrExtractionFailed, msgNoTextInImage, fmt.Errorf("empty OCR result"))
	}
	return text, nil
}

func (p *Processor) fromText(ctx context.Context, snippet string) (domain.GeneratedRecipe, error) {
	var (
		ext   domain.Extraction
		thumb string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ext, err = p.deps.Recipes.FormatRecipe(gctx, snippet, prompts.WebRecipe)
		return err
	})
	g.Go(func() error {
		var err error
		thumb, err = p.deps.Thumbnails.GenerateThumbnail(gctx, snippet)
		if err != nil {
			return domain.NewImportError(domain.ErrExtractionFailed, msgThumbnailFailed, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.GeneratedRecipe{}, err
	}
	if err := p.accept(ext, domain.SourceText); err != nil {
		return domain.GeneratedRecipe{}, err
	}
	recipe := ext.Recipe
	recipe.Thumbnail = &thumb
	return recipe, nil
}

func (p *Processor) fromVerticalVideo(ctx context.Context, raw string) (domain.GeneratedRecipe, error) {
	videoURL, err := NormalizeURL(raw)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrInvalidPayload, msgInvalidURL, err)
	}
	platform, ok := social.PlatformOf(videoURL)
	if !ok {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrPlatformScrapeFailed, msgUnsupportedVideo,
			fmt.Errorf("no scraper for %s", videoURL))
	}

	var scraped domain.Result[domain.VideoPost]
	switch platform {
	case social.Instagram:
		scraped = p.deps.Videos.ScrapeInstagramReel(ctx, videoURL)
	case social.TikTok:
		scraped = p.deps.Videos.ScrapeTikTok(ctx, videoURL)
	}
	post, err := scraped.Unpack()
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrPlatformScrapeFailed, msgVideoScrapeFailed, err)
	}

	ext, err := p.videoExtraction(ctx, videoURL, post)
	if err != nil {
		return domain.GeneratedRecipe{}, err
	}
	if err := p.accept(ext, domain.SourceVerticalVideo); err != nil {
		return domain.GeneratedRecipe{}, err
	}

	recipe := ext.Recipe
	thumb, err := p.deps.Images.UploadFromURL(ctx, post.ThumbnailURL)
	if err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrExtractionFailed, msgGeneric, err)
	}
	recipe.Thumbnail = &thumb
	recipe.SourceURL = firstNonEmpty(post.CanonicalURL, videoURL)
	if recipe.SourceName == "" {
		recipe.SourceName = firstNonEmpty(post.Author, string(platform))
	}
	return recipe, nil
}

// videoExtraction tries the caption alone first and only processes the full
// video when the caption is not a usable recipe.
func (p *Processor) videoExtraction(ctx context.Context, videoURL string, post domain.VideoPost) (domain.Extraction, error) {
	caption := strings.TrimSpace(post.Caption)
	if caption != "" {
		ext, err := p.deps.Recipes.RecipeFromSocialMediaVideo(ctx, caption, "")
		if err == nil && ext.Metadata.ContainsFood && ext.Metadata.EnoughContext {
			p.logger.Debug().Str("url", videoURL).Msg("importer: caption was enough")
			return ext, nil
		}
		if err != nil {
			p.logger.Warn().Err(err).Str("url", videoURL).Msg("importer: caption extraction failed, processing video")
		}
	}

	processed, err := p.deps.VideoProc.ProcessURL(ctx, videoURL).Unpack()
	if err != nil {
		return domain.Extraction{}, domain.NewImportError(domain.ErrExtractionFailed, msgVideoProcessing, err)
	}
	var text strings.Builder
	if caption != "" {
		text.WriteString("Caption:\n")
		text.WriteString(caption)
		text.WriteString("\n\n")
	}
	if processed.Transcript != "" {
		text.WriteString("Transcript:\n")
		text.WriteString(processed.Transcript)
	}
	return p.deps.Recipes.RecipeFromSocialMediaVideo(ctx, strings.TrimSpace(text.String()), processed.CollageURL)
}

func (p *Processor) fromDishcovery(ctx context.Context, raw string) (domain.GeneratedRecipe, error) {
	var payload domain.DishcoveryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrInvalidPayload, msgMissingPhoto, err)
	}
	photoURL := strings.TrimSpace(payload.PhotoURL)
	if photoURL == "" {
		return domain.GeneratedRecipe{}, domain.NewImportError(domain.ErrInvalidPayload, msgMissingPhoto,
			fmt.Errorf("photoUrl is empty"))
	}
	description := strings.TrimSpace(payload.Description)
	audioURL := strings.TrimSpace(payload.AudioURL)

	var (
		analysis   domain.PhotoAnalysis
		transcript string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = p.deps.Photos.AnalyzePhoto(gctx, photoURL).Unpack()
		if err != nil {
			return domain.NewImportError(domain.ErrExtractionFailed, msgPhotoAnalysis, err)
		}
		return nil
	})
	if audioURL != "" && description == "" {
		g.Go(func() error {
			// A failed transcription leaves the description empty.
			res := p.deps.Transcriber.TranscribeFromURL(gctx, audioURL)
			if res.Success {
				transcript = strings.TrimSpace(res.Data)
			} else {
				p.logger.Warn().Str("error", res.Error).Msg("importer: transcription failed, continuing without")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.GeneratedRecipe{}, err
	}

	final := firstNonEmpty(transcript, description)
	ext, err := p.deps.Recipes.FormatRecipe(ctx, dishcoveryPrompt(analysis, final), prompts.Dishcovery)
	if err != nil {
		return domain.GeneratedRecipe{}, err
	}
	if err := p.accept(ext, domain.SourceDishcovery); err != nil {
		return domain.GeneratedRecipe{}, err
	}
	recipe := ext.Recipe
	recipe.Thumbnail = &photoURL
	return recipe, nil
}

func dishcoveryPrompt(a domain.PhotoAnalysis, description string) string {
	var b strings.Builder
	b.WriteString("Foto-analyse van het gerecht:\n")
	fmt.Fprintf(&b, "- Soort gerecht: %s\n", orDash(a.DishType))
	fmt.Fprintf(&b, "- Zichtbare ingrediënten: %s\n", orDash(strings.Join(a.VisibleIngredients, ", ")))
	fmt.Fprintf(&b, "- Bereidingswijzen: %s\n", orDash(strings.Join(a.CookingMethods, ", ")))
	fmt.Fprintf(&b, "- Visuele beschrijving: %s\n", orDash(a.VisualDescription))
	b.WriteString("\nBeschrijving van de kok:\n")
	if description == "" {
		b.WriteString("(geen beschrijving, gebruik alleen de foto-analyse)")
	} else {
		b.WriteString(description)
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
