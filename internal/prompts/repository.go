// Package prompts resolves model instructions for every extraction mode.
// The repository is loaded once at startup and passed to the services that
// need it.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Variant is a closed set of prompt kinds.
type Variant int

const (
	WebRecipe Variant = iota
	Dishcovery
	SocialVideo
	PhotoAnalysis
	TextDetection
	Transcription
	Thumbnail
)

// Variants lists every variant. Load fails when one of them has no text.
var Variants = []Variant{WebRecipe, Dishcovery, SocialVideo, PhotoAnalysis, TextDetection, Transcription, Thumbnail}

var fileNames = map[Variant]string{
	WebRecipe:     "web_recipe.txt",
	Dishcovery:    "dishcovery.txt",
	SocialVideo:   "social_video.txt",
	PhotoAnalysis: "photo_analysis.txt",
	TextDetection: "text_detection.txt",
	Transcription: "transcription.txt",
	Thumbnail:     "thumbnail.txt",
}

func (v Variant) String() string {
	if name, ok := fileNames[v]; ok {
		return strings.TrimSuffix(name, ".txt")
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

//go:embed templates/*.txt
var embedded embed.FS

// ErrUnknownVariant is returned for variants outside the closed set.
var ErrUnknownVariant = errors.New("prompts: unknown variant")

// Repository holds the resolved prompt text per variant.
type Repository struct {
	texts map[Variant]string
}

// Load reads every variant from overrideDir when the file exists there,
// otherwise from the embedded defaults.
func Load(overrideDir string) (*Repository, error) {
	texts := make(map[Variant]string, len(Variants))
	for _, v := range Variants {
		name := fileNames[v]
		data, err := readOverride(overrideDir, name)
		if err != nil {
			return nil, err
		}
		if data == nil {
			data, err = fs.ReadFile(embedded, "templates/"+name)
			if err != nil {
				return nil, fmt.Errorf("prompts: read embedded %s: %w", name, err)
			}
		}
		texts[v] = string(data)
	}
	return New(texts)
}

// New builds a repository from explicit texts, validating completeness.
func New(texts map[Variant]string) (*Repository, error) {
	repo := &Repository{texts: make(map[Variant]string, len(texts))}
	for _, v := range Variants {
		text := strings.TrimSpace(texts[v])
		if text == "" {
			return nil, fmt.Errorf("prompts: %s is empty", v)
		}
		repo.texts[v] = text
	}
	return repo, nil
}

// Get returns the prompt for v.
func (r *Repository) Get(v Variant) (string, error) {
	text, ok := r.texts[v]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return text, nil
}

func readOverride(dir, name string) ([]byte, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prompts: read override %s: %w", name, err)
	}
	return data, nil
}
