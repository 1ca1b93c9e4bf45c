package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldDocuments decodes every LD+JSON block, including blocks whose type
// carries parameters such as a charset. Malformed blocks are skipped.
func ldDocuments(doc *goquery.Document) []any {
	var docs []any
	doc.Find(`script[type^="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var decoded any
		if err := json.Unmarshal([]byte(normalizeBlock(raw)), &decoded); err != nil {
			return
		}
		docs = append(docs, decoded)
	})
	return docs
}

// normalizeBlock strips CDATA wrappers and HTML comments some CMSes emit
// around the JSON payload.
func normalizeBlock(raw string) string {
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "//<![CDATA[")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "//]]>")
	return strings.TrimSpace(raw)
}

// flatten expands a document into candidate items: the top-level object,
// or the members of its @graph. Arrays are flattened element by element.
func flatten(doc any) []map[string]any {
	switch v := doc.(type) {
	case []any:
		var items []map[string]any
		for _, elem := range v {
			items = append(items, flatten(elem)...)
		}
		return items
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			var items []map[string]any
			for _, elem := range graph {
				if m, ok := elem.(map[string]any); ok {
					items = append(items, m)
				}
			}
			return items
		}
		return []map[string]any{v}
	}
	return nil
}

func isRecipe(item map[string]any) bool {
	switch t := item["@type"].(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, elem := range t {
			if s, ok := elem.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

// completeness counts which of recipeIngredient, recipeInstructions and
// name are present.
func completeness(item map[string]any) int {
	score := 0
	for _, key := range []string{"recipeIngredient", "recipeInstructions", "name"} {
		if present(item[key]) {
			score++
		}
	}
	return score
}

func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}
	return true
}

// firstImage normalizes a schema.org image value: a string, an object with
// url, or an array of either.
func firstImage(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if u, ok := val["url"].(string); ok {
			return strings.TrimSpace(u)
		}
	case []any:
		for _, elem := range val {
			if u := firstImage(elem); u != "" {
				return u
			}
		}
	}
	return ""
}
