package planner

import (
	"sort"
	"strings"

	"fithub/internal/recipe"
	"fithub/internal/shopping"
)

// CalculateCost sums cost per serving over the filled slots.
func CalculateCost(p MealPlan) float64 {
	var total float64
	for _, r := range p.Filled() {
		total += r.CostPerServing
	}
	return shopping.RoundCents(total)
}

// CalculateNutrition sums each nutrition axis over the filled slots.
func CalculateNutrition(p MealPlan) recipe.Nutrition {
	var n recipe.Nutrition
	for _, r := range p.Filled() {
		n.Calories += r.Nutrition.Calories
		n.Protein += r.Nutrition.Protein
		n.Carbs += r.Nutrition.Carbs
		n.Fat += r.Nutrition.Fat
	}
	return recipe.Nutrition{
		Calories: shopping.RoundCents(n.Calories),
		Protein:  shopping.RoundCents(n.Protein),
		Carbs:    shopping.RoundCents(n.Carbs),
		Fat:      shopping.RoundCents(n.Fat),
	}
}

// Allergens returns the sorted union of allergens across the filled slots.
func Allergens(p MealPlan) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range p.Filled() {
		for _, a := range r.Allergens {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// MarketCosts totals the plan's cost at every known market.
func MarketCosts(p MealPlan) shopping.Totals {
	return shopping.MarketCosts(p.Filled())
}

// Summary is every aggregate the plan view shows.
type Summary struct {
	Cost           float64          `json:"cost"`
	Nutrition      recipe.Nutrition `json:"nutrition"`
	Allergens      []string         `json:"allergens"`
	MarketCosts    shopping.Totals  `json:"market_costs"`
	CheapestMarket string           `json:"cheapest_market,omitempty"`
}

// Summarize computes the aggregates for p.
func Summarize(p MealPlan) Summary {
	totals := MarketCosts(p)
	cheapest, _ := shopping.CheapestMarket(totals)
	return Summary{
		Cost:           CalculateCost(p),
		Nutrition:      CalculateNutrition(p),
		Allergens:      Allergens(p),
		MarketCosts:    totals,
		CheapestMarket: cheapest,
	}
}
