package recipes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bonchef/internal/domain"
	"bonchef/internal/prompts"
	"bonchef/internal/providers/genai"
)

type fakeModel struct {
	generate  func(system string, parts []genai.Part) (string, error)
	downloads []string
	failFrame bool
}

func (f *fakeModel) GenerateJSON(_ context.Context, system string, parts ...genai.Part) (string, error) {
	return f.generate(system, parts)
}

func (f *fakeModel) Download(_ context.Context, rawURL string) (genai.Part, error) {
	f.downloads = append(f.downloads, rawURL)
	if f.failFrame {
		return genai.Part{}, errors.New("403")
	}
	return genai.Part{MimeType: "image/jpeg", Data: []byte("frame")}, nil
}

func testRepo(t *testing.T) *prompts.Repository {
	t.Helper()
	texts := map[prompts.Variant]string{}
	for _, v := range prompts.Variants {
		texts[v] = "prompt:" + v.String()
	}
	repo, err := prompts.New(texts)
	if err != nil {
		t.Fatalf("prompts.New returned error: %v", err)
	}
	return repo
}

const modelAnswer = "```json\n" + `{"recipe":{"title":" Pannenkoeken ","description":"","n_portions":0,"total_cook_time_minutes":-5,
"ingredients":[{"name":"","ingredients":[{"description":"bloem","unit":"Gram","quantity":{"type":"","low":250,"high":0}},{"description":"zout","unit":"snufje"},{"description":" "}]},
{"name":"Topping","ingredients":[{"description":"stroop","unit":"eetlepels","quantity":{"type":"range","low":2,"high":3}}]}],
"instructions":["Meng alles."," ","Bak."],"thumbnail":"","source_name":"Oma","source_url":"https://oma.nl/pannenkoeken"},
"metadata":{"containsFood":true,"enoughContext":true}}` + "\n```"

func TestFormatRecipeSanitizesAndNormalizes(t *testing.T) {
	var gotSystem string
	model := &fakeModel{generate: func(system string, parts []genai.Part) (string, error) {
		gotSystem = system
		if len(parts) != 1 || parts[0].Text != "recept tekst" {
			t.Fatalf("parts = %#v", parts)
		}
		return modelAnswer, nil
	}}
	svc := NewService(model, testRepo(t), nil)

	got, err := svc.FormatRecipe(context.Background(), "recept tekst", prompts.WebRecipe)
	if err != nil {
		t.Fatalf("FormatRecipe returned error: %v", err)
	}
	if gotSystem != "prompt:web_recipe" {
		t.Fatalf("system = %q", gotSystem)
	}
	r := got.Recipe
	if r.Title != "Pannenkoeken" || r.NPortions != 1 || r.TotalCookTimeMinutes != 1 {
		t.Fatalf("recipe header = %#v", r)
	}
	if r.Thumbnail != nil {
		t.Fatalf("empty thumbnail must become nil, got %q", *r.Thumbnail)
	}
	if r.Ingredients[0].Name != domain.NoGroup || len(r.Ingredients[0].Ingredients) != 2 {
		t.Fatalf("first group = %#v", r.Ingredients[0])
	}
	flour := r.Ingredients[0].Ingredients[0]
	if flour.Unit != "g" || flour.Quantity == nil || flour.Quantity.Low != 250 || flour.Quantity.High != 250 || flour.Quantity.Type != "range" {
		t.Fatalf("flour = %#v %#v", flour, flour.Quantity)
	}
	if r.Ingredients[0].Ingredients[1].Unit != "pinch" || r.Ingredients[0].Ingredients[1].Quantity != nil {
		t.Fatalf("salt = %#v", r.Ingredients[0].Ingredients[1])
	}
	if r.Ingredients[1].Name != "Topping" || r.Ingredients[1].Ingredients[0].Unit != "tbsp" {
		t.Fatalf("topping = %#v", r.Ingredients[1])
	}
	if strings.Join(r.Instructions, "|") != "Meng alles.|Bak." {
		t.Fatalf("instructions = %#v", r.Instructions)
	}
	if !got.Metadata.ContainsFood || !got.Metadata.EnoughContext {
		t.Fatalf("metadata = %#v", got.Metadata)
	}
}

func TestFormatRecipeUsesRequestedVariant(t *testing.T) {
	model := &fakeModel{generate: func(system string, _ []genai.Part) (string, error) {
		if system != "prompt:dishcovery" {
			t.Fatalf("system = %q", system)
		}
		return `{"recipe":{"title":"Soep"},"metadata":{"containsFood":true,"enoughContext":false}}`, nil
	}}
	if _, err := NewService(model, testRepo(t), nil).FormatRecipe(context.Background(), "x", prompts.Dishcovery); err != nil {
		t.Fatalf("FormatRecipe returned error: %v", err)
	}
}

func TestFormatRecipeFailuresAreExtractionFailed(t *testing.T) {
	cases := map[string]func(string, []genai.Part) (string, error){
		"model error": func(string, []genai.Part) (string, error) { return "", errors.New("upstream 500: secret body") },
		"bad json":    func(string, []genai.Part) (string, error) { return "{not json}", nil },
	}
	for name, generate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewService(&fakeModel{generate: generate}, testRepo(t), nil).
				FormatRecipe(context.Background(), "x", prompts.WebRecipe)
			if !errors.Is(err, domain.ErrExtractionFailed) {
				t.Fatalf("err = %v, want ErrExtractionFailed", err)
			}
			if err.Error() != FailedMessage {
				t.Fatalf("message = %q", err.Error())
			}
		})
	}
}

func TestRecipeFromSocialMediaVideoAddsFrame(t *testing.T) {
	model := &fakeModel{generate: func(system string, parts []genai.Part) (string, error) {
		if system != "prompt:social_video" {
			t.Fatalf("system = %q", system)
		}
		if len(parts) != 2 || parts[1].MimeType != "image/jpeg" {
			t.Fatalf("parts = %#v", parts)
		}
		return `{"recipe":{"title":"Ramen"},"metadata":{"containsFood":true,"enoughContext":true}}`, nil
	}}
	got, err := NewService(model, testRepo(t), nil).
		RecipeFromSocialMediaVideo(context.Background(), "caption", "https://cdn/collage.jpg")
	if err != nil {
		t.Fatalf("RecipeFromSocialMediaVideo returned error: %v", err)
	}
	if got.Recipe.Title != "Ramen" || len(model.downloads) != 1 {
		t.Fatalf("got %#v downloads %v", got.Recipe, model.downloads)
	}
}

func TestRecipeFromSocialMediaVideoSkipsBrokenFrame(t *testing.T) {
	model := &fakeModel{failFrame: true, generate: func(_ string, parts []genai.Part) (string, error) {
		if len(parts) != 1 {
			t.Fatalf("parts = %#v", parts)
		}
		return `{"recipe":{"title":"Taco"},"metadata":{"containsFood":true,"enoughContext":true}}`, nil
	}}
	if _, err := NewService(model, testRepo(t), nil).
		RecipeFromSocialMediaVideo(context.Background(), "caption", "https://cdn/x.jpg"); err != nil {
		t.Fatalf("RecipeFromSocialMediaVideo returned error: %v", err)
	}
}
