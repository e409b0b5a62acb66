package domain

import "context"

// RecipeSearcher finds recipe summaries for a free-text query.
type RecipeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]RecipeSummary, error)
}

// InstructionFetcher returns the ordered steps of one recipe. It returns
// ErrNoInstructions when the recipe has none.
type InstructionFetcher interface {
	FetchInstructions(ctx context.Context, recipeID int) ([]InstructionStep, error)
}

// RecipeAPI is the remote recipe service: search plus instruction lookup.
type RecipeAPI interface {
	RecipeSearcher
	InstructionFetcher
}

// RecipeCache persists the most recent hydrated recipe list. Save fully
// replaces the stored list. Load returns ErrNotFound when nothing has
// been saved yet.
type RecipeCache interface {
	Save(ctx context.Context, recipes []HydratedRecipe) error
	Load(ctx context.Context) ([]HydratedRecipe, error)
}
