// Package pipeline turns a query into a hydrated recipe list: one search,
// one instruction fetch per hit, then a write-through to the cache.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

// DefaultLimit is the fixed page size for a search.
const DefaultLimit = 5

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLimit overrides the number of recipes fetched per search.
func WithLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// Aggregator orchestrates the recipe API and the cache. It holds no
// per-search state, so concurrent searches do not interfere; the caller
// decides which result to show (the last one to finish wins).
type Aggregator struct {
	api   domain.RecipeAPI
	cache domain.RecipeCache
	log   *logger.Logger
	limit int
}

// New creates an aggregator. cache may be nil to disable persistence.
func New(api domain.RecipeAPI, cache domain.RecipeCache, log *logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		api:   api,
		cache: cache,
		log:   log,
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search validates query, fetches up to the configured limit of recipes
// and hydrates each with its instructions. The returned list keeps the
// search order. A failed instruction fetch degrades that recipe to a
// placeholder note; only a failed search or a canceled ctx fails the
// whole call. The result is written through to the cache; a cache
// failure is logged and otherwise ignored.
func (a *Aggregator) Search(ctx context.Context, query string) ([]domain.HydratedRecipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ValidationError("search", domain.ErrEmptyQuery)
	}

	summaries, err := a.api.Search(ctx, query, a.limit)
	if err != nil {
		a.log.Error("search %q failed: %v", query, err)
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	a.log.Info("search %q: %d recipes", query, len(summaries))

	recipes := a.hydrate(ctx, summaries)

	// Fetches cut short by cancellation are placeholders, not real misses.
	if err := ctx.Err(); err != nil {
		a.log.Warn("search %q canceled, not saving: %v", query, err)
		return nil, fmt.Errorf("searching recipes: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Save(ctx, recipes); err != nil {
			a.log.Error("saving %d recipes: %v", len(recipes), err)
		}
	}
	return recipes, nil
}

// hydrate fetches instructions for every summary concurrently and waits
// for all of them. Each goroutine owns exactly one slot of the result.
func (a *Aggregator) hydrate(ctx context.Context, summaries []domain.RecipeSummary) []domain.HydratedRecipe {
	recipes := make([]domain.HydratedRecipe, len(summaries))

	var g errgroup.Group
	for i, s := range summaries {
		g.Go(func() error {
			recipes[i] = domain.HydratedRecipe{
				ID:           s.ID,
				Title:        s.Title,
				Instructions: a.instructions(ctx, s),
			}
			return nil
		})
	}
	_ = g.Wait()

	return recipes
}

// instructions never fails: errors become placeholder notes.
func (a *Aggregator) instructions(ctx context.Context, s domain.RecipeSummary) domain.Instructions {
	steps, err := a.api.FetchInstructions(ctx, s.ID)
	switch {
	case errors.Is(err, domain.ErrNoInstructions):
		return domain.Placeholder(domain.NoteNoInstructions)
	case err != nil:
		a.log.Warn("instructions for %d (%s): %v", s.ID, s.Title, err)
		return domain.Placeholder(domain.NoteFetchFailed)
	default:
		return domain.StepList(steps)
	}
}

// LoadSaved returns the cached list. ok is false when nothing is saved,
// when persistence is disabled, or when the store failed (logged).
func (a *Aggregator) LoadSaved(ctx context.Context) (recipes []domain.HydratedRecipe, ok bool) {
	if a.cache == nil {
		return nil, false
	}

	recipes, err := a.cache.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		a.log.Info("no saved recipes")
		return nil, false
	}
	if err != nil {
		a.log.Error("loading saved recipes: %v", err)
		return nil, false
	}

	a.log.Info("loaded %d saved recipes", len(recipes))
	return recipes, true
}
