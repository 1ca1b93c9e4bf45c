package domain

import "time"

// NoGroup marks ingredients that do not belong to a named group.
const NoGroup = "no_group"

// QuantityRange is an inclusive amount. Low == High is an exact quantity.
type QuantityRange struct {
	Type string  `json:"type"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Ingredient is a single ingredient line. A nil Quantity means "to taste".
type Ingredient struct {
	Description string         `json:"description"`
	Unit        string         `json:"unit,omitempty"`
	Quantity    *QuantityRange `json:"quantity,omitempty"`
}

// IngredientGroup keeps ingredients in insertion order under a heading.
type IngredientGroup struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// GeneratedRecipe is the not yet persisted output of the extraction step.
type GeneratedRecipe struct {
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	NPortions            int               `json:"n_portions"`
	TotalCookTimeMinutes int               `json:"total_cook_time_minutes"`
	Ingredients          []IngredientGroup `json:"ingredients"`
	Instructions         []string          `json:"instructions"`
	Thumbnail            *string           `json:"thumbnail"`
	SourceName           string            `json:"source_name"`
	SourceURL            string            `json:"source_url"`
}

// RecipeGenerationMetadata is the quality signal returned with every
// generated recipe.
type RecipeGenerationMetadata struct {
	ContainsFood  bool `json:"containsFood"`
	EnoughContext bool `json:"enoughContext"`
}

// Extraction pairs a generated recipe with its quality metadata.
type Extraction struct {
	Recipe   GeneratedRecipe          `json:"recipe"`
	Metadata RecipeGenerationMetadata `json:"metadata"`
}

// RecipeStatus enumerates persisted recipe states.
type RecipeStatus string

const (
	RecipeStatusDraft     RecipeStatus = "DRAFT"
	RecipeStatusPublished RecipeStatus = "PUBLISHED"
)

// Recipe is a persisted recipe.
type Recipe struct {
	GeneratedRecipe
	ID        string
	UserID    string
	IsPublic  bool
	Status    RecipeStatus
	CreatedAt time.Time
}

// PhotoAnalysis describes what a vision model saw in a dish photo.
type PhotoAnalysis struct {
	DishType           string   `json:"dishType"`
	VisibleIngredients []string `json:"visibleIngredients"`
	CookingMethods     []string `json:"cookingMethods"`
	VisualDescription  string   `json:"visualDescription"`
}

// VideoPost is the scraped metadata of a short-form social video.
type VideoPost struct {
	Caption      string `json:"caption"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	Author       string `json:"author"`
	CanonicalURL string `json:"canonicalUrl"`
}

// ProcessedVideo is the output of full video processing.
type ProcessedVideo struct {
	Transcript string `json:"transcript"`
	CollageURL string `json:"collage_url"`
}
