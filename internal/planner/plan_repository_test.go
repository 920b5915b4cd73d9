package planner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fithub/internal/filter"
	"fithub/internal/recipe"
	"fithub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(store storage.Store, scope string) *PlanRepository {
	repo := NewPlanRepository(store, scope)
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("plan-%d", n)
	}
	repo.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return repo
}

func samplePlan() MealPlan {
	return MealPlan{
		Breakfast: &recipe.Recipe{ID: 1, CostPerServing: 5},
		Lunch:     &recipe.Recipe{ID: 2, CostPerServing: 7.5},
	}
}

func TestPlanRepositorySaveListDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(storage.NewMemoryStore(), "")

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	budget := 10.0
	first, err := repo.Save(ctx, samplePlan(), &budget)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", first.ID)
	assert.Equal(t, 12.5, first.TotalCost)
	assert.True(t, first.OverBudget())

	second, err := repo.Save(ctx, MealPlan{}, nil)
	require.NoError(t, err)
	assert.False(t, second.OverBudget())

	third, err := repo.Save(ctx, samplePlan(), nil)
	require.NoError(t, err)

	plans, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"plan-1", "plan-2", "plan-3"}, []string{plans[0].ID, plans[1].ID, plans[2].ID})

	// Deleting by ID stays correct regardless of position.
	require.NoError(t, repo.Delete(ctx, second.ID))
	require.NoError(t, repo.Delete(ctx, first.ID))

	plans, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, third.ID, plans[0].ID)

	err = repo.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	got, err := repo.Get(ctx, third.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Plan.Lunch)
	assert.Equal(t, int64(2), got.Plan.Lunch.ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanRepositoryMigratesLegacyRecords(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	legacy := `[
		{"mealPlan": {"breakfast": {"id": 1, "cost_per_serving": "4.50"}, "lunch": null, "dinner": null}, "date": "2025-05-01T10:00:00Z", "budget": 20},
		{"mealPlan": {"breakfast": null, "lunch": null, "dinner": {"id": 9}}, "date": "2025-05-02T10:00:00Z"}
	]`
	require.NoError(t, store.Set(ctx, "savedMealPlans", legacy))

	repo := newTestRepository(store, "")
	plans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "plan-1", plans[0].ID)
	assert.Equal(t, 4.5, plans[0].TotalCost)
	require.NotNil(t, plans[0].Budget)
	assert.Equal(t, 20.0, *plans[0].Budget)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), plans[0].SavedAt)
	assert.Equal(t, int64(9), plans[1].Plan.Dinner.ID)

	// IDs were written back, so a fresh repository sees the same ones.
	again, err := NewPlanRepository(store, "").List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-1", "plan-2"}, []string{again[0].ID, again[1].ID})
}

func TestPlanRepositoryCorruptList(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "savedMealPlans", "{not json"))

	_, err := newTestRepository(store, "").List(ctx)
	assert.Error(t, err)
}

func TestPlanState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := newTestRepository(store, "42")

	state, err := repo.LoadState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Plan.IsEmpty())

	c := filter.Criteria{Name: "kofte"}
	c.SetRange(filter.Cost, "", "15")
	require.NoError(t, repo.SaveState(ctx, PlanState{Filters: c, Plan: samplePlan()}))

	_, ok, err := store.Get(ctx, "42.mealPlanState")
	require.NoError(t, err)
	assert.True(t, ok, "state key is scoped")

	state, err = repo.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kofte", state.Filters.Name)
	assert.Equal(t, filter.Bound("15"), state.Filters.Ranges[filter.Cost].Max)
	assert.Equal(t, 12.5, CalculateCost(state.Plan))

	other, err := newTestRepository(store, "43").LoadState(ctx)
	require.NoError(t, err)
	assert.True(t, other.Plan.IsEmpty())

	require.NoError(t, repo.ClearState(ctx))
	state, err = repo.LoadState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Plan.IsEmpty())
}
