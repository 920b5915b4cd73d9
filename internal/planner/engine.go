package planner

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"fithub/internal/catalog"
	"fithub/internal/filter"
	"fithub/internal/recipe"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is how many candidates are requested per meal slot.
const DefaultPageSize = 50

// Engine retrieves candidate recipes and assembles meal plans. It holds no
// plan state of its own.
type Engine struct {
	catalog  catalog.Client
	logger   *slog.Logger
	pageSize int
	intn     func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger retrieval failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithRandom replaces the index picker. intn must return a value in [0, n)
// and be safe for concurrent use.
func WithRandom(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

// NewEngine creates a new Engine instance.
func NewEngine(c catalog.Client, opts ...Option) *Engine {
	e := &Engine{
		catalog:  c,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pageSize: DefaultPageSize,
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchRecipesByMealType returns the candidate pool for one meal slot. A
// catalog failure is logged and yields an empty pool.
func (e *Engine) FetchRecipesByMealType(ctx context.Context, mt recipe.MealType, c filter.Criteria) []recipe.Recipe {
	recipes, err := e.search(ctx, mt, c)
	if err != nil {
		e.logger.Warn("failed to fetch recipes", "meal_type", mt, "error", err)
		return []recipe.Recipe{}
	}
	return recipes
}

func (e *Engine) search(ctx context.Context, mt recipe.MealType, c filter.Criteria) ([]recipe.Recipe, error) {
	if inverted := c.InvertedRanges(); len(inverted) > 0 {
		e.logger.Warn("filter range has min above max and matches nothing", "meal_type", mt, "fields", inverted)
	}

	params := filter.BuildQueryParams(c)
	params.Set("meal_type", string(mt))
	params.Set("page_size", strconv.Itoa(e.pageSize))

	page, err := e.catalog.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return filter.ApplyRatingBounds(page.Results, c), nil
}

// GetRandomRecipe draws one recipe uniformly from the pool for mt. It returns
// nil when the pool is empty or could not be fetched.
func (e *Engine) GetRandomRecipe(ctx context.Context, mt recipe.MealType, c filter.Criteria) *recipe.Recipe {
	r, err := e.randomRecipe(ctx, mt, c)
	if err != nil {
		e.logger.Warn("failed to fetch recipes", "meal_type", mt, "error", err)
	}
	return r
}

func (e *Engine) randomRecipe(ctx context.Context, mt recipe.MealType, c filter.Criteria) (*recipe.Recipe, error) {
	pool, err := e.search(ctx, mt, c)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	picked := pool[e.intn(len(pool))]
	return &picked, nil
}

// GenerateRandomMealPlan draws every slot concurrently. Each slot settles on
// its own: a slot whose pool is empty or whose fetch failed stays empty while
// the others fill.
func (e *Engine) GenerateRandomMealPlan(ctx context.Context, c filter.Criteria) MealPlan {
	picks := make([]*recipe.Recipe, len(recipe.MealTypes))
	errs := make([]error, len(recipe.MealTypes))

	// A plain Group does not cancel siblings when one slot fails.
	var g errgroup.Group
	for i, mt := range recipe.MealTypes {
		g.Go(func() error {
			picks[i], errs[i] = e.randomRecipe(ctx, mt, c)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		for i, mt := range recipe.MealTypes {
			if errs[i] != nil {
				e.logger.Warn("failed to fetch recipes", "meal_type", mt, "error", errs[i])
			}
		}
	}

	return MealPlan{Breakfast: picks[0], Lunch: picks[1], Dinner: picks[2]}
}
