// Package units maps free-form ingredient units onto the canonical unit
// vocabulary.
package units

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"bonchef/internal/domain"
)

var lower = cases.Lower(language.Und)

// NormalizeUnit returns the canonical form of raw, or raw unchanged when the
// unit is unknown.
func NormalizeUnit(raw string) string {
	key := lookupKey(raw)
	if key == "" {
		return raw
	}
	if canonical, ok := translations[key]; ok {
		return canonical
	}
	return raw
}

// IsCanonical reports whether unit is part of the canonical vocabulary.
func IsCanonical(unit string) bool {
	for _, c := range Canonical {
		if c == unit {
			return true
		}
	}
	return false
}

// Normalize returns a copy of recipe with every ingredient unit translated.
// Grouping and ordering are preserved; only Unit fields change.
func Normalize(recipe domain.GeneratedRecipe) domain.GeneratedRecipe {
	if recipe.Ingredients == nil {
		return recipe
	}
	groups := make([]domain.IngredientGroup, len(recipe.Ingredients))
	for i, group := range recipe.Ingredients {
		items := group.Ingredients
		if items != nil {
			items = make([]domain.Ingredient, len(group.Ingredients))
			for j, ing := range group.Ingredients {
				if ing.Unit != "" {
					ing.Unit = NormalizeUnit(ing.Unit)
				}
				items[j] = ing
			}
		}
		groups[i] = domain.IngredientGroup{Name: group.Name, Ingredients: items}
	}
	recipe.Ingredients = groups
	return recipe
}

func lookupKey(raw string) string {
	key := strings.TrimSpace(norm.NFKC.String(raw))
	key = strings.TrimRight(key, ".")
	return lower.String(key)
}
