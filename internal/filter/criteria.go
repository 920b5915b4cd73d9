package filter

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"fithub/internal/recipe"
)

// Field names a numeric recipe attribute that can be bounded.
type Field string

const (
	Cost             Field = "cost"
	Calories         Field = "calories"
	Protein          Field = "protein"
	Carbs            Field = "carbs"
	Fat              Field = "fat"
	PrepTime         Field = "prep_time"
	CookTime         Field = "cook_time"
	TotalTime        Field = "total_time"
	DifficultyRating Field = "difficulty_rating"
	TasteRating      Field = "taste_rating"
	HealthRating     Field = "health_rating"
)

// RemoteFields are forwarded to the catalog query.
var RemoteFields = []Field{Cost, Calories, Protein, Carbs, Fat, PrepTime, CookTime, TotalTime}

// RatingFields are applied locally after the catalog responds.
var RatingFields = []Field{DifficultyRating, TasteRating, HealthRating}

func (f Field) integer() bool {
	return f == PrepTime || f == CookTime || f == TotalTime
}

// Range is an optional min/max pair. Either side may be blank.
type Range struct {
	Min Bound `json:"min,omitempty"`
	Max Bound `json:"max,omitempty"`
}

// Criteria is the search form state for recipes.
type Criteria struct {
	Name             string            `json:"name,omitempty"`
	MealTypes        []recipe.MealType `json:"meal_types,omitempty"`
	Ranges           map[Field]Range   `json:"ranges,omitempty"`
	ExcludeAllergens []string          `json:"exclude_allergens,omitempty"`
	DietInfo         []string          `json:"diet_info,omitempty"`
	HasImage         bool              `json:"has_image,omitempty"`
	Page             Bound             `json:"page,omitempty"`
	PageSize         Bound             `json:"page_size,omitempty"`
}

// SetRange stores both sides of a range for f.
func (c *Criteria) SetRange(f Field, min, max Bound) {
	if c.Ranges == nil {
		c.Ranges = make(map[Field]Range)
	}
	c.Ranges[f] = Range{Min: min, Max: max}
}

// InvertedRanges lists the fields whose min exceeds their max. Such a range
// matches nothing; it is not rejected.
func (c Criteria) InvertedRanges() []Field {
	var inverted []Field
	for _, f := range append(slices.Clone(RemoteFields), RatingFields...) {
		r, ok := c.Ranges[f]
		if !ok {
			continue
		}
		lo, okLo := r.Min.Value()
		hi, okHi := r.Max.Value()
		if okLo && okHi && lo > hi {
			inverted = append(inverted, f)
		}
	}
	return inverted
}

// BuildQueryParams converts criteria into catalog query parameters. Keys are
// only present for bounds that normalize to a number. Rating bounds are never
// included.
func BuildQueryParams(c Criteria) url.Values {
	params := url.Values{}

	if name := strings.TrimSpace(c.Name); name != "" {
		params.Set("name", name)
	}
	if len(c.MealTypes) > 0 {
		types := make([]string, 0, len(c.MealTypes))
		for _, mt := range c.MealTypes {
			types = append(types, string(mt))
		}
		params.Set("meal_type", strings.Join(types, ","))
	}

	for _, f := range RemoteFields {
		r, ok := c.Ranges[f]
		if !ok {
			continue
		}
		if v, ok := r.Min.Value(); ok {
			params.Set("min_"+string(f), formatNumber(v, f.integer()))
		}
		if v, ok := r.Max.Value(); ok {
			params.Set("max_"+string(f), formatNumber(v, f.integer()))
		}
	}

	if len(c.ExcludeAllergens) > 0 {
		params.Set("exclude_allergens", strings.Join(c.ExcludeAllergens, ","))
	}
	if len(c.DietInfo) > 0 {
		params.Set("diet_info", strings.Join(c.DietInfo, ","))
	}
	if c.HasImage {
		params.Set("has_image", "true")
	}
	if v, ok := c.Page.Value(); ok {
		params.Set("page", formatNumber(v, true))
	}
	if v, ok := c.PageSize.Value(); ok {
		params.Set("page_size", formatNumber(v, true))
	}

	return params
}

func formatNumber(v float64, integer bool) string {
	if integer {
		return strconv.FormatInt(floorInt64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// floorInt64 floors v and clamps it to the int64 range.
func floorInt64(v float64) int64 {
	f := math.Floor(v)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// FromQuery parses criteria from query style key/value input, the same keys
// BuildQueryParams emits plus the rating bounds. Unknown keys are ignored.
func FromQuery(q url.Values) Criteria {
	c := Criteria{
		Name:     strings.TrimSpace(q.Get("name")),
		Page:     Bound(q.Get("page")),
		PageSize: Bound(q.Get("page_size")),
	}

	for _, s := range splitList(q["meal_type"]) {
		if mt, err := recipe.ParseMealType(s); err == nil {
			c.MealTypes = append(c.MealTypes, mt)
		}
	}
	c.ExcludeAllergens = splitList(q["exclude_allergens"])
	c.DietInfo = splitList(q["diet_info"])

	if v := strings.TrimSpace(q.Get("has_image")); v != "" {
		c.HasImage, _ = strconv.ParseBool(v)
	}

	for _, f := range append(slices.Clone(RemoteFields), RatingFields...) {
		lo, hi := q.Get("min_"+string(f)), q.Get("max_"+string(f))
		if lo == "" && hi == "" {
			continue
		}
		c.SetRange(f, Bound(lo), Bound(hi))
	}
	return c
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
