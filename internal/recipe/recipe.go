package recipe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MealType tags which slot of a day a recipe is meant for.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the meal types in slot order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// ParseMealType converts user input into a MealType.
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	switch mt {
	case Breakfast, Lunch, Dinner:
		return mt, nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// NeutralRating is substituted for a rating the recipe does not carry yet.
const NeutralRating = 1.0

// Decimal is a float that decodes from either a JSON number or a numeric string,
// since the catalog serializes decimal fields as strings.
type Decimal float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid decimal %s: %w", b, err)
	}
	*d = Decimal(f)
	return nil
}

// Nutrition is the canonical nutrition shape for one serving.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is a read-only record served by the recipe catalog.
type Recipe struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	MealType         MealType           `json:"meal_type"`
	CostPerServing   float64            `json:"cost_per_serving"`
	Nutrition        Nutrition          `json:"nutrition"`
	Allergens        []string           `json:"allergens,omitempty"`
	DietInfo         []string           `json:"diet_info,omitempty"`
	MarketCosts      map[string]float64 `json:"market_costs,omitempty"`
	DifficultyRating *float64           `json:"difficulty_rating,omitempty"`
	TasteRating      *float64           `json:"taste_rating,omitempty"`
	HealthRating     *float64           `json:"health_rating,omitempty"`
	PrepTime         int                `json:"prep_time"`
	CookTime         int                `json:"cook_time"`
	HasImage         bool               `json:"has_image"`
}

// wireRecipe mirrors every shape the catalog has been seen to send.
type wireRecipe struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	MealType         MealType           `json:"meal_type"`
	CostPerServing   Decimal            `json:"cost_per_serving"`
	Nutrition        *wireNutrition     `json:"nutrition"`
	NutritionFacts   *wireNutrition     `json:"nutrition_facts"`
	Calories         Decimal            `json:"calories"`
	Protein          Decimal            `json:"protein"`
	Carbs            Decimal            `json:"carbs"`
	Fat              Decimal            `json:"fat"`
	Allergens        []string           `json:"allergens"`
	DietInfo         []string           `json:"diet_info"`
	MarketCosts      map[string]Decimal `json:"market_costs"`
	DifficultyRating *Decimal           `json:"difficulty_rating"`
	TasteRating      *Decimal           `json:"taste_rating"`
	HealthRating     *Decimal           `json:"health_rating"`
	PrepTime         Decimal            `json:"prep_time"`
	CookTime         Decimal            `json:"cook_time"`
	HasImage         *bool              `json:"has_image"`
	Image            *string            `json:"image"`
}

type wireNutrition struct {
	Calories Decimal `json:"calories"`
	Protein  Decimal `json:"protein"`
	Carbs    Decimal `json:"carbs"`
	Fat      Decimal `json:"fat"`
}

// UnmarshalJSON resolves nested and flattened nutrition once, at ingestion.
// A nested record wins over top-level fields.
func (r *Recipe) UnmarshalJSON(b []byte) error {
	var w wireRecipe
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	nested := w.Nutrition
	if nested == nil {
		nested = w.NutritionFacts
	}
	nutrition := Nutrition{
		Calories: float64(w.Calories),
		Protein:  float64(w.Protein),
		Carbs:    float64(w.Carbs),
		Fat:      float64(w.Fat),
	}
	if nested != nil {
		nutrition = Nutrition{
			Calories: float64(nested.Calories),
			Protein:  float64(nested.Protein),
			Carbs:    float64(nested.Carbs),
			Fat:      float64(nested.Fat),
		}
	}

	var markets map[string]float64
	if len(w.MarketCosts) > 0 {
		markets = make(map[string]float64, len(w.MarketCosts))
		for name, cost := range w.MarketCosts {
			markets[name] = float64(cost)
		}
	}

	hasImage := w.Image != nil && *w.Image != ""
	if w.HasImage != nil {
		hasImage = *w.HasImage
	}

	*r = Recipe{
		ID:               w.ID,
		Name:             w.Name,
		MealType:         w.MealType,
		CostPerServing:   float64(w.CostPerServing),
		Nutrition:        nutrition,
		Allergens:        w.Allergens,
		DietInfo:         w.DietInfo,
		MarketCosts:      markets,
		DifficultyRating: decimalPtr(w.DifficultyRating),
		TasteRating:      decimalPtr(w.TasteRating),
		HealthRating:     decimalPtr(w.HealthRating),
		PrepTime:         int(w.PrepTime),
		CookTime:         int(w.CookTime),
		HasImage:         hasImage,
	}
	return nil
}

func decimalPtr(d *Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := float64(*d)
	return &f
}

// TotalTime returns prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Difficulty returns the difficulty rating, or NeutralRating when unrated.
func (r Recipe) Difficulty() float64 { return ratingOrNeutral(r.DifficultyRating) }

// Taste returns the taste rating, or NeutralRating when unrated.
func (r Recipe) Taste() float64 { return ratingOrNeutral(r.TasteRating) }

// Health returns the health rating, or NeutralRating when unrated.
func (r Recipe) Health() float64 { return ratingOrNeutral(r.HealthRating) }

func ratingOrNeutral(v *float64) float64 {
	if v == nil {
		return NeutralRating
	}
	return *v
}
