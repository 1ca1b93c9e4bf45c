package units

import (
	"reflect"
	"testing"

	"bonchef/internal/domain"
)

func sampleRecipe() domain.GeneratedRecipe {
	return domain.GeneratedRecipe{
		Title: "Stamppot",
		Ingredients: []domain.IngredientGroup{
			{Name: "Stamppot", Ingredients: []domain.Ingredient{
				{Description: "aardappelen", Unit: "Kilo", Quantity: &domain.QuantityRange{Type: "range", Low: 1, High: 1}},
				{Description: "boerenkool", Unit: "gram", Quantity: &domain.QuantityRange{Type: "range", Low: 500, High: 500}},
				{Description: "melk", Unit: "Scheutje"},
			}},
			{Name: domain.NoGroup, Ingredients: []domain.Ingredient{
				{Description: "rookworst", Unit: "stuk"},
				{Description: "mosterd", Unit: "EL."},
				{Description: "nootmuskaat", Unit: "naar smaak"},
				{Description: "zout"},
			}},
		},
		Instructions: []string{"Kook de aardappelen.", "Stamp alles fijn.", "Serveer met worst."},
	}
}

func TestNormalizeTranslatesKnownUnits(t *testing.T) {
	got := Normalize(sampleRecipe())

	want := [][]string{
		{Kilogram, Gram, Dash},
		{Piece, Tablespoon, "naar smaak", ""},
	}
	for gi, group := range got.Ingredients {
		for ii, ing := range group.Ingredients {
			if ing.Unit != want[gi][ii] {
				t.Fatalf("group %d ingredient %d unit = %q, want %q", gi, ii, ing.Unit, want[gi][ii])
			}
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := Normalize(sampleRecipe())
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization is not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	in := sampleRecipe()
	out := Normalize(in)

	if len(out.Ingredients) != len(in.Ingredients) {
		t.Fatalf("group count changed: %d -> %d", len(in.Ingredients), len(out.Ingredients))
	}
	for gi := range in.Ingredients {
		if out.Ingredients[gi].Name != in.Ingredients[gi].Name {
			t.Fatalf("group %d name = %q, want %q", gi, out.Ingredients[gi].Name, in.Ingredients[gi].Name)
		}
		for ii := range in.Ingredients[gi].Ingredients {
			if out.Ingredients[gi].Ingredients[ii].Description != in.Ingredients[gi].Ingredients[ii].Description {
				t.Fatalf("ingredient order changed in group %d at %d", gi, ii)
			}
		}
	}
	if !reflect.DeepEqual(out.Instructions, in.Instructions) {
		t.Fatalf("instructions changed: %#v", out.Instructions)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := sampleRecipe()
	_ = Normalize(in)
	if in.Ingredients[0].Ingredients[0].Unit != "Kilo" {
		t.Fatalf("input mutated: %q", in.Ingredients[0].Ingredients[0].Unit)
	}
}

func TestCanonicalUnitsMapToThemselves(t *testing.T) {
	for _, unit := range Canonical {
		if got := NormalizeUnit(unit); got != unit {
			t.Fatalf("NormalizeUnit(%q) = %q", unit, got)
		}
	}
	for raw, canonical := range translations {
		if !IsCanonical(canonical) {
			t.Fatalf("translation %q -> %q targets a non-canonical unit", raw, canonical)
		}
	}
}

func TestNormalizeUnitUnknownPassesThrough(t *testing.T) {
	for _, raw := range []string{"", "  ", "naar smaak", "Emmer"} {
		if got := NormalizeUnit(raw); got != raw {
			t.Fatalf("NormalizeUnit(%q) = %q, want unchanged", raw, got)
		}
	}
}
