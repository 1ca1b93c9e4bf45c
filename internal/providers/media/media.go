// Package media wraps the multimodal model for the non-recipe capabilities
// of the import pipeline: OCR, audio transcription, photo analysis and
// thumbnail generation.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
	"bonchef/internal/prompts"
	"bonchef/internal/providers/genai"
)

// Model is the subset of the Gemini client used here.
type Model interface {
	GenerateJSON(ctx context.Context, system string, parts ...genai.Part) (string, error)
	GenerateText(ctx context.Context, system string, parts ...genai.Part) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
	Download(ctx context.Context, rawURL string) (genai.Part, error)
}

// Service implements the media collaborators of the importer.
type Service struct {
	model   Model
	prompts *prompts.Repository
	images  domain.ImageStore
	logger  *infra.Logger
}

func NewService(model Model, repo *prompts.Repository, images domain.ImageStore, logger *infra.Logger) *Service {
	return &Service{model: model, prompts: repo, images: images, logger: infra.LoggerOrDiscard(logger)}
}

// TranscribeFromURL downloads an audio recording and returns its transcript.
func (s *Service) TranscribeFromURL(ctx context.Context, audioURL string) domain.Result[string] {
	system, err := s.prompts.Get(prompts.Transcription)
	if err != nil {
		return domain.FailErr[string](err)
	}
	audio, err := s.model.Download(ctx, audioURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", audioURL).Msg("media: download audio failed")
		return domain.Fail[string]("audio kon niet worden gedownload")
	}
	text, err := s.model.GenerateText(ctx, system, audio)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", audioURL).Msg("media: transcription failed")
		return domain.Fail[string]("transcriptie mislukt")
	}
	return domain.Ok(strings.TrimSpace(text))
}

// AnalyzePhoto describes the dish shown at photoURL.
func (s *Service) AnalyzePhoto(ctx context.Context, photoURL string) domain.Result[domain.PhotoAnalysis] {
	system, err := s.prompts.Get(prompts.PhotoAnalysis)
	if err != nil {
		return domain.FailErr[domain.PhotoAnalysis](err)
	}
	photo, err := s.model.Download(ctx, photoURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", photoURL).Msg("media: download photo failed")
		return domain.Fail[domain.PhotoAnalysis]("foto kon niet worden gedownload")
	}
	raw, err := s.model.GenerateJSON(ctx, system, photo)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", photoURL).Msg("media: photo analysis failed")
		return domain.Fail[domain.PhotoAnalysis]("foto-analyse mislukt")
	}
	analysis, err := genai.DecodeJSON[domain.PhotoAnalysis](raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("media: decode photo analysis")
		return domain.Fail[domain.PhotoAnalysis]("foto-analyse onleesbaar")
	}
	return domain.Ok(analysis)
}

// DetectText runs OCR on a local image file.
func (s *Service) DetectText(ctx context.Context, localPath string) (string, error) {
	system, err := s.prompts.Get(prompts.TextDetection)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("media: read %s: %w", localPath, err)
	}
	if len(data) == 0 {
		return "", errors.New("media: image file is empty")
	}
	start := time.Now()
	text, err := s.model.GenerateText(ctx, system, genai.Part{MimeType: http.DetectContentType(data), Data: data})
	if err != nil {
		return "", fmt.Errorf("media: detect text: %w", err)
	}
	s.logger.Debug().Int("bytes", len(data)).Dur("took", time.Since(start)).Msg("media: text detected")
	return strings.TrimSpace(text), nil
}

// GenerateThumbnail renders a dish photo from a free-text description and
// stores it, returning the public URL.
func (s *Service) GenerateThumbnail(ctx context.Context, description string) (string, error) {
	base, err := s.prompts.Get(prompts.Thumbnail)
	if err != nil {
		return "", err
	}
	data, mime, err := s.model.GenerateImage(ctx, base+"\n\n"+strings.TrimSpace(description))
	if err != nil {
		return "", fmt.Errorf("media: generate thumbnail: %w", err)
	}
	url, err := s.images.Upload(ctx, data, mime)
	if err != nil {
		return "", fmt.Errorf("media: store thumbnail: %w", err)
	}
	return url, nil
}
