// Package extractor turns a fetched recipe page into text for the
// structuring model plus the most representative image.
package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bonchef/internal/domain"
)

// structuredThreshold is the completeness score a schema must exceed
// before its JSON is preferred over page text.
const structuredThreshold = 1

// Result is the extraction output. BestImageURL is empty when the page has
// no usable image.
type Result struct {
	TextForLLM   string
	BestImageURL string
	Structured   bool
}

// Extract locates LD+JSON Recipe data in body, falling back to heuristic
// DOM text when no sufficiently complete schema exists.
func Extract(body string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: parse html: %v", domain.ErrExtractionFailed, err)
	}

	var recipes []map[string]any
	for _, d := range ldDocuments(doc) {
		for _, item := range flatten(d) {
			if isRecipe(item) {
				recipes = append(recipes, item)
			}
		}
	}

	best, bestScore := mostComplete(recipes)
	res := Result{BestImageURL: resolveImage(best, recipes, doc)}

	if best != nil && bestScore > structuredThreshold {
		encoded, err := json.Marshal(best)
		if err != nil {
			return Result{}, fmt.Errorf("%w: encode schema: %v", domain.ErrExtractionFailed, err)
		}
		res.TextForLLM = string(encoded)
		res.Structured = true
		return res, nil
	}

	res.TextForLLM = domText(doc)
	return res, nil
}

func mostComplete(recipes []map[string]any) (map[string]any, int) {
	var best map[string]any
	bestScore := -1
	for _, r := range recipes {
		if score := completeness(r); score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, bestScore
}

// resolveImage prefers the best schema's image, then any other recipe's
// image, then og:image.
func resolveImage(best map[string]any, recipes []map[string]any, doc *goquery.Document) string {
	if best != nil {
		if img := firstImage(best["image"]); img != "" {
			return img
		}
	}
	for _, r := range recipes {
		if img := firstImage(r["image"]); img != "" {
			return img
		}
	}
	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}
