package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
	"bonchef/internal/sqlinline"
)

// RecipeRepositoryPG implements domain.RecipeStore.
type RecipeRepositoryPG struct {
	db infra.SQLExecutor
}

func NewRecipeRepository(db infra.SQLExecutor) *RecipeRepositoryPG {
	return &RecipeRepositoryPG{db: db}
}

// InsertForJob stores recipe as a private draft of the job owner and marks
// the job completed in one statement.
func (r *RecipeRepositoryPG) InsertForJob(ctx context.Context, jobID string, recipe domain.GeneratedRecipe) (string, error) {
	groups := recipe.Ingredients
	if groups == nil {
		groups = []domain.IngredientGroup{}
	}
	ingredients, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("encode ingredients: %w", err)
	}
	steps := recipe.Instructions
	if steps == nil {
		steps = []string{}
	}
	instructions, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode instructions: %w", err)
	}
	thumbnail := ""
	if recipe.Thumbnail != nil {
		thumbnail = *recipe.Thumbnail
	}

	var id string
	if err := r.db.QueryRow(ctx, sqlinline.QInsertRecipeForJob,
		jobID,
		recipe.Title,
		recipe.Description,
		recipe.NPortions,
		recipe.TotalCookTimeMinutes,
		ingredients,
		instructions,
		thumbnail,
		recipe.SourceName,
		recipe.SourceURL,
	).Scan(&id); err != nil {
		if infra.IsNoRows(err) {
			return "", fmt.Errorf("%w: job %s is not pending", domain.ErrInvalidTransition, jobID)
		}
		return "", fmt.Errorf("insert recipe: %w", err)
	}
	return id, nil
}

var _ domain.RecipeStore = (*RecipeRepositoryPG)(nil)
