// Package shopping compares what a set of recipes costs at each supported market.
package shopping

import (
	"math"
	"sort"

	"fithub/internal/recipe"
)

// Markets are the markets whose prices the catalog tracks.
var Markets = []string{"A101", "BIM", "MIGROS"}

// Totals maps a market name to the summed cost at that market.
type Totals map[string]float64

// Line is one recipe's contribution to the comparison.
type Line struct {
	RecipeID   int64
	RecipeName string
	Costs      map[string]float64
}

// Comparison is the market breakdown for a set of recipes.
type Comparison struct {
	Lines    []Line
	Totals   Totals
	Cheapest string
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarketCosts sums each recipe's per-market cost for every known market. A
// recipe without pricing at a market contributes nothing there.
func MarketCosts(recipes []recipe.Recipe) Totals {
	totals := make(Totals, len(Markets))
	for _, m := range Markets {
		var sum float64
		for _, r := range recipes {
			sum += r.MarketCosts[m]
		}
		totals[m] = RoundCents(sum)
	}
	return totals
}

// CheapestMarket returns the market with the smallest positive total. Markets
// with a zero total had no pricing and are skipped. Ties go to the market that
// sorts first.
func CheapestMarket(totals Totals) (string, bool) {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	best, found := "", false
	for _, name := range names {
		v := totals[name]
		if v <= 0 {
			continue
		}
		if !found || v < totals[best] {
			best, found = name, true
		}
	}
	return best, found
}

// Compare builds the per-recipe and per-market breakdown for recipes.
func Compare(recipes []recipe.Recipe) Comparison {
	lines := make([]Line, 0, len(recipes))
	for _, r := range recipes {
		costs := make(map[string]float64, len(Markets))
		for _, m := range Markets {
			if v, ok := r.MarketCosts[m]; ok {
				costs[m] = v
			}
		}
		lines = append(lines, Line{RecipeID: r.ID, RecipeName: r.Name, Costs: costs})
	}

	totals := MarketCosts(recipes)
	cheapest, _ := CheapestMarket(totals)
	return Comparison{Lines: lines, Totals: totals, Cheapest: cheapest}
}
