package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fithub/internal/catalog"
	"fithub/internal/filter"
	"fithub/internal/planner"
	"fithub/internal/recipe"
	"fithub/internal/shopping"
)

// App holds the application's dependencies.
type App struct {
	engine  *planner.Engine
	catalog catalog.Client
	plans   *planner.PlanRepository
	out     io.Writer
}

// NewApp creates and initializes a new App instance.
func NewApp(engine *planner.Engine, catalogClient catalog.Client, plans *planner.PlanRepository, out io.Writer) *App {
	return &App{
		engine:  engine,
		catalog: catalogClient,
		plans:   plans,
		out:     out,
	}
}

// ListRecipes prints the candidate pool for a meal type.
func (a *App) ListRecipes(ctx context.Context, mt recipe.MealType, c filter.Criteria) error {
	recipes := a.engine.FetchRecipesByMealType(ctx, mt, c)
	if len(recipes) == 0 {
		fmt.Fprintf(a.out, "No %s recipes match the filters.\n", mt)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOST\tKCAL\tTIME\tALLERGENS")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.0f\t%d min\t%s\n",
			r.ID, r.Name, r.CostPerServing, r.Nutrition.Calories, r.TotalTime(), strings.Join(r.Allergens, ", "))
	}
	return tw.Flush()
}

// RandomPlan draws a new plan, remembers it with its filters and prints it.
func (a *App) RandomPlan(ctx context.Context, c filter.Criteria) error {
	plan := a.engine.GenerateRandomMealPlan(ctx, c)
	if err := a.plans.SaveState(ctx, planner.PlanState{Filters: c, Plan: plan}); err != nil {
		return err
	}
	for _, mt := range recipe.MealTypes {
		if plan.Get(mt) == nil {
			fmt.Fprintf(a.out, "No %s candidates found; slot left empty.\n", mt)
		}
	}
	return a.printPlan(plan)
}

// ShowPlan prints the remembered plan.
func (a *App) ShowPlan(ctx context.Context) error {
	state, err := a.plans.LoadState(ctx)
	if err != nil {
		return err
	}
	return a.printPlan(state.Plan)
}

// SelectRecipe toggles a catalog recipe into a slot of the remembered plan.
func (a *App) SelectRecipe(ctx context.Context, mt recipe.MealType, id int64) error {
	r, err := a.catalog.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch recipe %d: %w", id, err)
	}

	state, err := a.plans.LoadState(ctx)
	if err != nil {
		return err
	}
	filled, err := state.Plan.Select(mt, *r)
	if err != nil {
		return err
	}
	if err := a.plans.SaveState(ctx, state); err != nil {
		return err
	}

	if filled {
		fmt.Fprintf(a.out, "Selected %q for %s.\n", r.Name, mt)
	} else {
		fmt.Fprintf(a.out, "Removed %q from %s.\n", r.Name, mt)
	}
	return a.printPlan(state.Plan)
}

// ClearPlan empties the remembered plan and keeps its filters.
func (a *App) ClearPlan(ctx context.Context) error {
	state, err := a.plans.LoadState(ctx)
	if err != nil {
		return err
	}
	state.Plan.Clear()
	if err := a.plans.SaveState(ctx, state); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Meal plan cleared.")
	return nil
}

// SavePlan appends the remembered plan to the saved list.
func (a *App) SavePlan(ctx context.Context, budget *float64) error {
	state, err := a.plans.LoadState(ctx)
	if err != nil {
		return err
	}
	if state.Plan.IsEmpty() {
		return fmt.Errorf("nothing to save: the meal plan is empty")
	}
	saved, err := a.plans.Save(ctx, state.Plan, budget)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved plan %s (%.2f).\n", saved.ID, saved.TotalCost)
	if saved.OverBudget() {
		fmt.Fprintf(a.out, "Warning: plan costs %.2f, over the %.2f budget.\n", saved.TotalCost, *saved.Budget)
	}
	return nil
}

// ListSavedPlans prints the saved plans.
func (a *App) ListSavedPlans(ctx context.Context) error {
	plans, err := a.plans.List(ctx)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(a.out, "No saved plans.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tCOST\tBUDGET\tMEALS")
	for _, p := range plans {
		budget := "-"
		if p.Budget != nil {
			budget = fmt.Sprintf("%.2f", *p.Budget)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
			p.ID, p.SavedAt.Format("2006-01-02 15:04"), p.TotalCost, budget, mealNames(p.Plan))
	}
	return tw.Flush()
}

// DeleteSavedPlan removes a saved plan by ID.
func (a *App) DeleteSavedPlan(ctx context.Context, id string) error {
	if err := a.plans.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted plan %s.\n", id)
	return nil
}

func mealNames(p planner.MealPlan) string {
	names := make([]string, 0, len(recipe.MealTypes))
	for _, mt := range recipe.MealTypes {
		name := "-"
		if r := p.Get(mt); r != nil {
			name = r.Name
		}
		names = append(names, name)
	}
	return strings.Join(names, " / ")
}

func (a *App) printPlan(p planner.MealPlan) error {
	s := planner.Summarize(p)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tRECIPE\tCOST\tKCAL")
	for _, mt := range recipe.MealTypes {
		r := p.Get(mt)
		if r == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", mt)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.0f\n", mt, r.Name, r.CostPerServing, r.Nutrition.Calories)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nTotal cost: %.2f\n", s.Cost)
	fmt.Fprintf(a.out, "Nutrition: %.2f kcal, %.2f g protein, %.2f g carbs, %.2f g fat\n",
		s.Nutrition.Calories, s.Nutrition.Protein, s.Nutrition.Carbs, s.Nutrition.Fat)
	if len(s.Allergens) > 0 {
		fmt.Fprintf(a.out, "Allergens: %s\n", strings.Join(s.Allergens, ", "))
	}

	var markets []string
	for _, m := range shopping.Markets {
		markets = append(markets, fmt.Sprintf("%s %.2f", m, s.MarketCosts[m]))
	}
	fmt.Fprintf(a.out, "Markets: %s\n", strings.Join(markets, ", "))
	if s.CheapestMarket != "" {
		fmt.Fprintf(a.out, "Cheapest market: %s\n", s.CheapestMarket)
	}
	return nil
}
