package storage

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SavedRecipesKey is the one key the recipe list lives under.
const SavedRecipesKey = "savedRecipes"

// Compile-time interface check.
var _ domain.RecipeCache = (*RecipeCache)(nil)

// RecipeCache stores the latest hydrated recipe list as a JSON array
// under SavedRecipesKey. Each Save replaces the previous list.
type RecipeCache struct {
	kv  KV
	log *logger.Logger
}

// NewRecipeCache creates a recipe cache over kv.
func NewRecipeCache(kv KV, log *logger.Logger) *RecipeCache {
	return &RecipeCache{kv: kv, log: log}
}

// Save serializes recipes and overwrites the stored list.
func (c *RecipeCache) Save(ctx context.Context, recipes []domain.HydratedRecipe) error {
	const op = "cache.save"

	if recipes == nil {
		recipes = []domain.HydratedRecipe{}
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		return domain.PersistenceError(op, fmt.Errorf("encode: %w", err))
	}
	if err := c.kv.Set(ctx, SavedRecipesKey, string(data)); err != nil {
		return domain.PersistenceError(op, err)
	}

	c.log.Debug("saved %d recipes (%d bytes)", len(recipes), len(data))
	return nil
}

// Load returns the stored list, or domain.ErrNotFound when nothing has
// been saved.
func (c *RecipeCache) Load(ctx context.Context) ([]domain.HydratedRecipe, error) {
	const op = "cache.load"

	raw, err := c.kv.Get(ctx, SavedRecipesKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.PersistenceError(op, err)
	}

	var recipes []domain.HydratedRecipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, domain.PersistenceError(op, fmt.Errorf("decode: %w", err))
	}
	if recipes == nil {
		recipes = []domain.HydratedRecipe{}
	}

	c.log.Debug("loaded %d recipes", len(recipes))
	return recipes, nil
}
