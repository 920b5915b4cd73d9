package filter

import "fithub/internal/recipe"

func ratingOf(r recipe.Recipe, f Field) float64 {
	switch f {
	case DifficultyRating:
		return r.Difficulty()
	case TasteRating:
		return r.Taste()
	case HealthRating:
		return r.Health()
	}
	return recipe.NeutralRating
}

// MatchesRatings reports whether r satisfies every configured rating bound.
// An unrated recipe is compared using recipe.NeutralRating.
func (c Criteria) MatchesRatings(r recipe.Recipe) bool {
	for _, f := range RatingFields {
		rng, ok := c.Ranges[f]
		if !ok {
			continue
		}
		v := ratingOf(r, f)
		if lo, ok := rng.Min.Value(); ok && v < lo {
			return false
		}
		if hi, ok := rng.Max.Value(); ok && v > hi {
			return false
		}
	}
	return true
}

// HasRatingBounds reports whether any rating bound normalizes to a number.
func (c Criteria) HasRatingBounds() bool {
	for _, f := range RatingFields {
		rng := c.Ranges[f]
		if _, ok := rng.Min.Value(); ok {
			return true
		}
		if _, ok := rng.Max.Value(); ok {
			return true
		}
	}
	return false
}

// ApplyRatingBounds keeps the recipes that satisfy c's rating bounds.
func ApplyRatingBounds(recipes []recipe.Recipe, c Criteria) []recipe.Recipe {
	if !c.HasRatingBounds() {
		return recipes
	}
	kept := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if c.MatchesRatings(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
